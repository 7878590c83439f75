package repositories

import (
	"context"
)

// VectorRepository defines the read-only interface to the vector index.
// The index is owned and populated externally; this service only queries it.
// Abstracting it allows for easy testing and implementation swapping.
type VectorRepository interface {
	// Query returns the topK nearest records to the query vector, optionally
	// constrained by a metadata filter. An all-zero vector is a valid query
	// used intentionally for filter-only retrieval.
	Query(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]*Match, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// Match represents a single record returned by vector similarity search
type Match struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"` // Record text from metadata
	Price    float64                `json:"price"`   // Numeric price attribute, 0 when absent
	Score    float32                `json:"score"`   // Similarity score (higher is better)
	Metadata map[string]interface{} `json:"metadata"`
}

// VectorRepositoryError represents errors from the vector repository
type VectorRepositoryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorRepositoryError) Unwrap() error {
	return e.Err
}

// NewVectorRepositoryError creates a new vector repository error
func NewVectorRepositoryError(operation string, err error, message string) *VectorRepositoryError {
	return &VectorRepositoryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}
