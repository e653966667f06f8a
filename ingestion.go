package sitegraph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soundprediction/sitegraph/pkg/refdata"
	"github.com/soundprediction/sitegraph/pkg/store"
	"github.com/soundprediction/sitegraph/pkg/telemetry"
	"github.com/soundprediction/sitegraph/pkg/types"
)

const (
	// defaultEventType tags every status assertion appended during ingestion.
	defaultEventType = "operational"

	defaultEventConfidence = 0.8

	structuredEvidenceConfidence = 0.9
	mentionEvidenceConfidence    = 0.8

	// snippetMaxLen bounds evidence snippets persisted from candidate names.
	snippetMaxLen = 500
)

// evidenceRow carries the per-candidate provenance fields written alongside
// a facility row.
type evidenceRow struct {
	snippet    string
	start      any
	end        any
	confidence float64
}

// Ingest persists a batch of extracted items. The company root and the
// schema are ensured up front; after that every item, and every candidate
// within an item, fails independently: malformed or conflicting rows are
// logged and skipped while the rest of the batch proceeds.
func (c *Client) Ingest(ctx context.Context, items []types.ExtractedItem) (*types.IngestStats, error) {
	start := time.Now()

	if err := c.store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBootstrap, err)
	}
	companyID, err := c.ensureCompany(ctx, refdata.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBootstrap, err)
	}

	stats := &types.IngestStats{}
	skipped := 0
	for i := range items {
		if err := c.ingestItem(ctx, companyID, &items[i], stats); err != nil {
			c.logger.Warn("Skipping extracted item",
				"index", i, "url", items[i].SourceURL, "error", err)
			skipped++
		}
	}

	c.logger.Info("Persisting complete, graph updated",
		"items", len(items), "skipped", skipped,
		"facilities", stats.Facilities, "events", stats.Events,
		"jobs", stats.Jobs, "sources", stats.Sources)

	if c.recorder != nil {
		record := telemetry.RunRecord{
			StartedAt:  start.UTC(),
			DurationMs: time.Since(start).Milliseconds(),
			Items:      int32(len(items)),
			Skipped:    int32(skipped),
			Divisions:  int32(stats.Divisions),
			Facilities: int32(stats.Facilities),
			Events:     int32(stats.Events),
			Jobs:       int32(stats.Jobs),
			Sources:    int32(stats.Sources),
		}
		if err := c.recorder.RecordRun(record); err != nil {
			c.logger.Warn("Failed to record ingestion telemetry", "error", err)
		}
	}

	return stats, nil
}

// ingestItem persists one extracted item. An envelope validation error skips
// the whole item; candidate-level errors are logged and only drop the
// offending candidate.
func (c *Client) ingestItem(ctx context.Context, companyID int64, item *types.ExtractedItem, stats *types.IngestStats) error {
	if err := item.Validate(); err != nil {
		return err
	}

	// A source failure degrades evidence linkage to NULL but never drops
	// the candidates themselves.
	sourceID, err := c.upsertSource(ctx, item, stats)
	if err != nil {
		c.logger.Warn("Failed to persist source, evidence will be unlinked",
			"url", item.SourceURL, "error", err)
		sourceID = nil
	}

	if len(item.StructuredFacilities) > 0 {
		valid := make([]types.FacilityCandidate, 0, len(item.StructuredFacilities))
		for i := range item.StructuredFacilities {
			cand := item.StructuredFacilities[i]
			if err := cand.Validate(); err != nil {
				c.logger.Warn("Skipping facility candidate",
					"name", cand.Name, "error", err)
				continue
			}
			valid = append(valid, cand)
		}
		if len(valid) > 0 {
			for _, cand := range c.resolver.Resolve(valid) {
				ev := evidenceRow{snippet: cand.Name, confidence: structuredEvidenceConfidence}
				if err := c.commitFacility(ctx, companyID, sourceID, cand, ev, stats); err != nil {
					c.logger.Warn("Skipping resolved facility",
						"name", cand.Name, "error", err)
				}
			}
		}
	}

	for i := range item.StructuredJobs {
		job := item.StructuredJobs[i]
		if err := job.Validate(); err != nil {
			c.logger.Warn("Skipping job candidate", "title", job.Title, "error", err)
			continue
		}
		if err := c.insertJob(ctx, sourceID, job, stats); err != nil {
			c.logger.Warn("Skipping job candidate", "title", job.Title, "error", err)
		}
	}

	if len(item.Entities) > 0 {
		c.ingestMentions(ctx, companyID, sourceID, item.Entities, stats)
	}

	return nil
}

// ingestMentions persists loose entity mentions. Facility mentions are
// enriched through the reference tables before committing; job-title
// mentions become factory-role job rows.
func (c *Client) ingestMentions(ctx context.Context, companyID int64, sourceID any, entities map[string][]types.EntityMention, stats *types.IngestStats) {
	categories := make([]string, 0, len(entities))
	for category := range entities {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		switch category {
		case types.CategoryFacilities:
			for _, m := range entities[category] {
				text := strings.TrimSpace(m.Text)
				if text == "" {
					continue
				}
				cand := c.candidateFromMention(text, m.Location)
				ev := evidenceRow{
					snippet:    text,
					start:      m.Start,
					end:        m.End,
					confidence: mentionEvidenceConfidence,
				}
				if err := c.commitFacility(ctx, companyID, sourceID, cand, ev, stats); err != nil {
					c.logger.Warn("Skipping facility mention", "text", text, "error", err)
				}
			}
		case types.CategoryJobTitles:
			for _, m := range entities[category] {
				text := strings.TrimSpace(m.Text)
				if text == "" {
					continue
				}
				job := types.JobCandidate{Title: text, Location: m.Location}
				if err := c.insertJob(ctx, sourceID, job, stats); err != nil {
					c.logger.Warn("Skipping job-title mention", "text", text, "error", err)
				}
			}
		default:
			c.logger.Warn("Ignoring unknown entity category", "category", category)
		}
	}
}

// candidateFromMention lifts a free-text facility mention into a structured
// candidate using the reference tables: city by substring match, state by
// city lookup, division by abbreviation then keyword.
func (c *Client) candidateFromMention(text, location string) types.FacilityCandidate {
	city := c.tables.ExtractCity(text)
	if city == "" && location != "" {
		city = c.tables.ExtractCity(location)
	}
	return types.FacilityCandidate{
		Name:       text,
		City:       city,
		State:      c.tables.StateOf(city),
		Division:   c.tables.InferDivision(text),
		Confidence: mentionEvidenceConfidence,
	}
}

// commitFacility writes one resolved candidate: division, facility upsert,
// one status event, and one evidence row.
func (c *Client) commitFacility(ctx context.Context, companyID int64, sourceID any, cand types.FacilityCandidate, ev evidenceRow, stats *types.IngestStats) error {
	divisionID, err := c.ensureDivision(ctx, companyID, cand.Division, stats)
	if err != nil {
		return err
	}

	facilityID, err := c.upsertFacility(ctx, divisionID, cand)
	if err != nil {
		return err
	}
	stats.Facilities++

	status := cand.Status
	if status == "" {
		status = types.StatusOperational
	}
	confidence := cand.Confidence
	if confidence == 0 {
		confidence = defaultEventConfidence
	}

	if _, err := c.store.Insert(ctx,
		`INSERT INTO events (facility_id, event_type, event_date, status, expansion_type, confidence)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		facilityID, defaultEventType, nullable(cand.Date), string(status),
		nullable(string(cand.ExpansionType)), confidence,
	); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	stats.Events++

	if err := c.insertEvidence(ctx, sourceID, facilityID, ev); err != nil {
		// Evidence is provenance only; losing it never loses the facility.
		c.logger.Warn("Failed to persist evidence",
			"facility_id", facilityID, "error", err)
	}

	return nil
}

// ensureCompany returns the id of the root company row, creating it once.
func (c *Client) ensureCompany(ctx context.Context, name string) (int64, error) {
	id, ok, err := c.lookupID(ctx, "SELECT id FROM companies WHERE name = ?", name)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	id, err = c.store.Insert(ctx, "INSERT INTO companies (name) VALUES (?)", name)
	if err != nil {
		if store.IsConstraintViolation(err) {
			// Lost a race with a concurrent writer; the row exists now.
			id, ok, err = c.lookupID(ctx, "SELECT id FROM companies WHERE name = ?", name)
			if err == nil && ok {
				return id, nil
			}
		}
		return 0, fmt.Errorf("failed to insert company: %w", err)
	}
	return id, nil
}

// ensureDivision returns the id of the canonical division under companyID,
// creating the row when first seen.
func (c *Client) ensureDivision(ctx context.Context, companyID int64, name string, stats *types.IngestStats) (int64, error) {
	if name == "" {
		name = refdata.DefaultDivision
	}
	name = c.tables.CanonicalDivision(name)

	id, ok, err := c.lookupID(ctx,
		"SELECT id FROM divisions WHERE company_id = ? AND name = ?", companyID, name)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	id, err = c.store.Insert(ctx,
		"INSERT INTO divisions (company_id, name) VALUES (?, ?)", companyID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert division: %w", err)
	}
	stats.Divisions++
	return id, nil
}

// upsertSource finds or creates the source row for the item's url. sources
// are insert-or-ignore: the first fetch of a url wins and later fetches
// reuse its row.
func (c *Client) upsertSource(ctx context.Context, item *types.ExtractedItem, stats *types.IngestStats) (any, error) {
	id, ok, err := c.lookupID(ctx, "SELECT id FROM sources WHERE url = ?", item.SourceURL)
	if err != nil {
		return nil, err
	}
	if ok {
		stats.Sources++
		return id, nil
	}

	var fetchedAt any
	if !item.FetchedAt.IsZero() {
		fetchedAt = item.FetchedAt.UTC().Format(time.RFC3339)
	}
	sourceType := item.SourceType
	if sourceType == "" {
		sourceType = types.SourceTypeWeb
	}

	id, err = c.store.Insert(ctx,
		`INSERT INTO sources (url, title, fetched_at, mime_type, publish_date, source_type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.SourceURL, nullable(item.SourceTitle), fetchedAt,
		nullable(item.MimeType), nullable(item.PublishDate), string(sourceType))
	if err != nil {
		if store.IsConstraintViolation(err) {
			id, ok, err = c.lookupID(ctx, "SELECT id FROM sources WHERE url = ?", item.SourceURL)
			if err == nil && ok {
				stats.Sources++
				return id, nil
			}
		}
		return nil, fmt.Errorf("failed to insert source: %w", err)
	}
	stats.Sources++
	return id, nil
}

// upsertFacility finds or creates a facility by its identity key. City is
// stored as an empty string rather than NULL so repeated ingestion of a
// city-less candidate keeps hitting the same row.
func (c *Client) upsertFacility(ctx context.Context, divisionID int64, cand types.FacilityCandidate) (int64, error) {
	key := types.FacilityKey(cand.Name, cand.City)

	id, ok, err := c.lookupID(ctx,
		`SELECT id FROM facilities
		 WHERE LOWER(TRIM(name)) = ? AND LOWER(TRIM(COALESCE(city, ''))) = ?`,
		key.Name, key.City)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	id, err = c.store.Insert(ctx,
		`INSERT INTO facilities (division_id, name, city, state, country, normalized_name)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		divisionID, cand.Name, cand.City, nullable(cand.State),
		nullable(cand.Country), c.resolver.NormalizeName(cand.Name))
	if err != nil {
		return 0, fmt.Errorf("failed to insert facility: %w", err)
	}
	return id, nil
}

// insertEvidence links a facility to its source document.
func (c *Client) insertEvidence(ctx context.Context, sourceID any, facilityID int64, ev evidenceRow) error {
	snippet := ev.snippet
	// The limit counts characters, so multi-byte names never persist a
	// split rune.
	if runes := []rune(snippet); len(runes) > snippetMaxLen {
		snippet = string(runes[:snippetMaxLen])
	}

	_, err := c.store.Insert(ctx,
		`INSERT INTO evidence (source_id, entity_type, entity_id, text_snippet, char_start, char_end, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sourceID, types.EntityTypeFacility, facilityID, snippet,
		ev.start, ev.end, ev.confidence)
	if err != nil {
		return fmt.Errorf("failed to insert evidence: %w", err)
	}
	return nil
}

// insertJob persists one job posting. Factory role defaults to true; the
// upstream collector is assumed to have pre-filtered postings.
func (c *Client) insertJob(ctx context.Context, sourceID any, job types.JobCandidate, stats *types.IngestStats) error {
	isFactory := 1
	if job.IsFactoryRole != nil && !*job.IsFactoryRole {
		isFactory = 0
	}

	_, err := c.store.Insert(ctx,
		`INSERT INTO jobs (title, location, is_factory_role, source_id, posted_date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		job.Title, nullable(job.Location), isFactory, sourceID,
		nullable(job.PostedDate), nullable(job.Description))
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	stats.Jobs++
	return nil
}

// lookupID runs a single-column id SELECT and reports whether a row matched.
func (c *Client) lookupID(ctx context.Context, query string, args ...any) (int64, bool, error) {
	rows, err := c.store.Query(ctx, query, args...)
	if err != nil {
		return 0, false, err
	}
	defer rows.Close()

	if rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, false, err
		}
		return id, true, rows.Err()
	}
	return 0, false, rows.Err()
}

// nullable maps empty strings to NULL so display defaulting stays in the
// query layer.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
