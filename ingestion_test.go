package sitegraph

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/soundprediction/sitegraph/pkg/store"
	"github.com/soundprediction/sitegraph/pkg/types"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClient(st, nil, quiet)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func directoryItem() types.ExtractedItem {
	return types.ExtractedItem{
		SourceURL:   "https://www.motherson.com/contact/address-directory",
		SourceTitle: "Motherson Address Directory",
		FetchedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		SourceType:  types.SourceTypeWeb,
		StructuredFacilities: []types.FacilityCandidate{
			{Name: "Sanand Plant", Division: "MSWIL", City: "Sanand", State: "Gujarat", Status: types.StatusOperational},
			{Name: "Chakan Facility", Division: "SMP", City: "Chakan", State: "Maharashtra", Status: types.StatusPlanned, ExpansionType: types.ExpansionGreenfield, Date: "2024-11-01"},
		},
	}
}

func TestIngestBuildsGraph(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	stats, err := c.Ingest(ctx, []types.ExtractedItem{directoryItem()})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if stats.Facilities != 2 {
		t.Errorf("facilities touched = %d, want 2", stats.Facilities)
	}
	if stats.Events != 2 {
		t.Errorf("events = %d, want 2", stats.Events)
	}
	if stats.Sources != 1 {
		t.Errorf("sources = %d, want 1", stats.Sources)
	}

	dbStats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if dbStats.Companies != 1 {
		t.Errorf("companies = %d, want 1", dbStats.Companies)
	}
	if dbStats.Facilities != 2 {
		t.Errorf("facility rows = %d, want 2", dbStats.Facilities)
	}
	if dbStats.Divisions != 2 {
		t.Errorf("division rows = %d, want 2", dbStats.Divisions)
	}
	if dbStats.Evidence != 2 {
		t.Errorf("evidence rows = %d, want 2", dbStats.Evidence)
	}
}

func TestIngestIsIdempotentForFacilities(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	batch := []types.ExtractedItem{directoryItem()}
	if _, err := c.Ingest(ctx, batch); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	first, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Ingest(ctx, batch); err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	second, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if second.Facilities != first.Facilities {
		t.Errorf("facility rows grew on re-ingestion: %d -> %d", first.Facilities, second.Facilities)
	}
	if second.Divisions != first.Divisions {
		t.Errorf("division rows grew on re-ingestion: %d -> %d", first.Divisions, second.Divisions)
	}
	if second.Sources != first.Sources {
		t.Errorf("source rows grew on re-ingestion: %d -> %d", first.Sources, second.Sources)
	}
	// Events and evidence are append-only and legitimately accumulate.
	if second.Events <= first.Events {
		t.Errorf("events did not accumulate: %d -> %d", first.Events, second.Events)
	}
}

func TestIngestCityCaseInsensitiveUpsert(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	items := []types.ExtractedItem{
		{
			SourceURL: "https://example.com/a",
			StructuredFacilities: []types.FacilityCandidate{
				{Name: "Sanand Plant", Division: "MSWIL", City: "Sanand"},
			},
		},
		{
			SourceURL: "https://example.com/b",
			StructuredFacilities: []types.FacilityCandidate{
				{Name: "SANAND PLANT", Division: "MSWIL", City: "SANAND"},
			},
		},
	}

	if _, err := c.Ingest(ctx, items); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Facilities != 1 {
		t.Errorf("case-differing mentions created %d facility rows, want 1", stats.Facilities)
	}
}

func TestIngestSkipsMalformedItems(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	items := []types.ExtractedItem{
		{SourceTitle: "no url"}, // fails envelope validation
		directoryItem(),
	}

	stats, err := c.Ingest(ctx, items)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Facilities != 2 {
		t.Errorf("valid item was not committed, facilities = %d", stats.Facilities)
	}
}

func TestIngestSkipsMalformedCandidates(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	items := []types.ExtractedItem{
		{
			SourceURL: "https://example.com/mixed",
			StructuredFacilities: []types.FacilityCandidate{
				{Name: ""}, // invalid
				{Name: "Hosur Plant", Division: "SEATING", City: "Hosur"},
			},
		},
	}

	stats, err := c.Ingest(ctx, items)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Facilities != 1 {
		t.Errorf("sibling candidate was dropped, facilities = %d", stats.Facilities)
	}
}

func TestIngestEntityMentions(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	items := []types.ExtractedItem{
		{
			SourceURL: "https://example.com/news",
			Entities: map[string][]types.EntityMention{
				types.CategoryFacilities: {
					{Text: "MSWIL wiring plant in Sanand", Start: 10, End: 38},
				},
				types.CategoryJobTitles: {
					{Text: "Assembly Line Operator", Location: "Sanand, Gujarat"},
				},
				"unknown_category": {
					{Text: "ignored"},
				},
			},
		},
	}

	stats, err := c.Ingest(ctx, items)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if stats.Facilities != 1 {
		t.Errorf("facilities = %d, want 1", stats.Facilities)
	}
	if stats.Jobs != 1 {
		t.Errorf("jobs = %d, want 1", stats.Jobs)
	}

	// The mention should have been enriched through the lookup tables.
	facilities, err := c.ListFacilities(ctx, FacilityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(facilities) != 1 {
		t.Fatalf("expected 1 facility, got %d", len(facilities))
	}
	if facilities[0].City != "Sanand" {
		t.Errorf("city = %q, want Sanand", facilities[0].City)
	}
	if facilities[0].State != "Gujarat" {
		t.Errorf("state = %q, want Gujarat", facilities[0].State)
	}
	if facilities[0].Division != "Wiring Systems" {
		t.Errorf("division = %q, want Wiring Systems", facilities[0].Division)
	}
}

func TestIngestJobFactoryRoleDefault(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	office := false
	items := []types.ExtractedItem{
		{
			SourceURL: "https://careers.motherson.com/openings",
			StructuredJobs: []types.JobCandidate{
				{Title: "Assembly Line Operator", PostedDate: "2024-05-01"},
				{Title: "Payroll Analyst", IsFactoryRole: &office},
			},
		},
	}

	if _, err := c.Ingest(ctx, items); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	factory, err := c.ListJobs(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(factory) != 1 || factory[0].Title != "Assembly Line Operator" {
		t.Errorf("factory-only filter returned %+v", factory)
	}

	all, err := c.ListJobs(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(all))
	}
}

func TestEvidenceSnippetTruncatesWholeCharacters(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	// A long Devanagari name: every character is multi-byte, so a byte
	// cut at the limit would land mid-rune.
	name := strings.Repeat("सानंद", 150)
	items := []types.ExtractedItem{
		{
			SourceURL: "https://example.com/long",
			StructuredFacilities: []types.FacilityCandidate{
				{Name: name, Division: "MSWIL", City: "Sanand"},
			},
		},
	}

	if _, err := c.Ingest(ctx, items); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	rows, err := c.store.Query(ctx, "SELECT text_snippet FROM evidence")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatal("expected an evidence row")
	}
	var snippet string
	if err := rows.Scan(&snippet); err != nil {
		t.Fatal(err)
	}

	if !utf8.ValidString(snippet) {
		t.Error("snippet is not valid UTF-8")
	}
	if got := len([]rune(snippet)); got != 500 {
		t.Errorf("snippet length = %d characters, want 500", got)
	}
}

func TestIngestBootstrapErrorIsFatal(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	st.Close() // closed store makes bootstrap fail

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewClient(st, nil, quiet)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Ingest(context.Background(), []types.ExtractedItem{directoryItem()}); err == nil {
		t.Fatal("expected bootstrap failure to abort ingestion")
	}
}
