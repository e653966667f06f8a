package dto

import (
	"errors"

	"github.com/soundprediction/sitegraph/pkg/types"
)

// MaxBatchSize caps how many extracted items one request may carry.
const MaxBatchSize = 1000

var (
	ErrEmptyBatch    = errors.New("items array cannot be empty")
	ErrBatchTooLarge = errors.New("items array exceeds maximum batch size")
)

// IngestRequest carries a batch of extracted items for ingestion.
type IngestRequest struct {
	Items []types.ExtractedItem `json:"items"`
}

// Validate performs validation on IngestRequest. Item-level validation is
// the engine's job; the request only polices batch shape.
func (r *IngestRequest) Validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyBatch
	}
	if len(r.Items) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}

// IngestResponse reports the outcome of an ingestion request.
type IngestResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Stats   *types.IngestStats `json:"stats,omitempty"`
}
