// Package telemetry records one Parquet row per ingestion batch for offline
// observability: run id, timing, per-table counts, and how many items were
// skipped. Records are buffered and flushed to timestamped Parquet files so
// a failed flush never disturbs ingestion itself.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// RunRecord is one ingestion batch as persisted to Parquet.
type RunRecord struct {
	ID         string    `parquet:"id"`
	StartedAt  time.Time `parquet:"started_at"`
	DurationMs int64     `parquet:"duration_ms"`
	Items      int32     `parquet:"items"`
	Skipped    int32     `parquet:"skipped"`
	Divisions  int32     `parquet:"divisions"`
	Facilities int32     `parquet:"facilities"`
	Events     int32     `parquet:"events"`
	Jobs       int32     `parquet:"jobs"`
	Sources    int32     `parquet:"sources"`
}

// Recorder buffers run records and flushes them to Parquet files.
type Recorder struct {
	outputDir string
	mu        sync.Mutex
	buffer    []RunRecord
	batchSize int
}

// NewRecorder creates a Recorder writing under outputDir.
func NewRecorder(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &Recorder{
		outputDir: outputDir,
		batchSize: 16,
		buffer:    make([]RunRecord, 0, 16),
	}, nil
}

// RecordRun buffers one ingestion run, assigning an id when absent, and
// flushes when the buffer fills.
func (r *Recorder) RecordRun(record RunRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, record)
	if len(r.buffer) >= r.batchSize {
		return r.flush()
	}
	return nil
}

// Flush writes any buffered records immediately.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("ingest_runs_%s_%d.parquet",
		time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	r.buffer = r.buffer[:0]
	return nil
}
