package sitegraph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/sitegraph/pkg/refdata"
	"github.com/soundprediction/sitegraph/pkg/resolver"
	"github.com/soundprediction/sitegraph/pkg/store"
	"github.com/soundprediction/sitegraph/pkg/telemetry"
	"github.com/soundprediction/sitegraph/pkg/types"
)

// Common errors.
var (
	ErrNilStore  = errors.New("store cannot be nil")
	ErrBootstrap = errors.New("database bootstrap failed")
)

// FacilityFilter narrows ListFacilities results. Zero-value fields are
// ignored. Division and State are matched exactly against stored values;
// Status is matched case-insensitively against the derived status.
type FacilityFilter struct {
	Division string
	State    string
	Status   string
}

// ExpansionFilter bounds ListExpansions by event date. Bounds are
// inclusive ISO "YYYY-MM-DD" strings; rows with no event date always pass.
type ExpansionFilter struct {
	DateFrom string
	DateTo   string
}

// Graph is the main interface for building and querying the facility graph.
type Graph interface {
	// Ingest persists a batch of extracted items into the graph and
	// returns aggregate counts of rows touched. Malformed items are
	// logged and skipped; only bootstrap-level failures abort the batch.
	Ingest(ctx context.Context, items []types.ExtractedItem) (*types.IngestStats, error)

	// ListFacilities returns one consolidated record per facility.
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]types.FacilityRecord, error)

	// ListExpansions returns expansion and announcement events, newest
	// first, deduplicated by facility.
	ListExpansions(ctx context.Context, filter ExpansionFilter) ([]types.ExpansionRecord, error)

	// ListJobs returns job postings, most recent first. When factoryOnly
	// is true, only factory-floor roles are returned.
	ListJobs(ctx context.Context, factoryOnly bool) ([]types.JobRecord, error)

	// Stats returns row counts for every table.
	Stats(ctx context.Context) (*store.Stats, error)

	// Reset deletes all graph data, preserving the schema.
	Reset(ctx context.Context) error

	// Close flushes telemetry and releases the underlying store.
	Close() error
}

// Options tunes optional Client collaborators.
type Options struct {
	// Tables overrides the built-in reference lookup tables.
	Tables *refdata.Tables

	// Recorder, when set, receives one telemetry record per Ingest call.
	Recorder *telemetry.Recorder
}

// Client is the main implementation of the Graph interface.
type Client struct {
	store    store.Store
	resolver *resolver.Resolver
	tables   *refdata.Tables
	recorder *telemetry.Recorder
	logger   *slog.Logger
}

var _ Graph = (*Client)(nil)

// NewClient creates a graph client over the given store. opts and logger
// may be nil; built-in reference tables and slog.Default() are used.
func NewClient(st store.Store, opts *Options, logger *slog.Logger) (*Client, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts == nil {
		opts = &Options{}
	}
	tables := opts.Tables
	if tables == nil {
		tables = refdata.Default()
	}
	return &Client{
		store:    st,
		resolver: resolver.New(tables, logger),
		tables:   tables,
		recorder: opts.Recorder,
		logger:   logger,
	}, nil
}

// Stats returns row counts for every table.
func (c *Client) Stats(ctx context.Context) (*store.Stats, error) {
	return c.store.Stats(ctx)
}

// Reset deletes all graph data, preserving the schema.
func (c *Client) Reset(ctx context.Context) error {
	return c.store.Reset(ctx)
}

// Close flushes buffered telemetry and closes the underlying store.
func (c *Client) Close() error {
	if c.recorder != nil {
		if err := c.recorder.Flush(); err != nil {
			c.logger.Warn("Failed to flush telemetry", "error", err)
		}
	}
	return c.store.Close()
}
