package repositories

import (
	"context"
	"fmt"

	"seat-assistant/internal/db"
)

const (
	// Metadata keys on indexed records
	metadataContentKey = "content"
	metadataPriceKey   = "price"
)

// PineconeVectorRepository implements VectorRepository using Pinecone
type PineconeVectorRepository struct {
	client *db.PineconeClient
}

// NewPineconeVectorRepository creates a new Pinecone-backed vector repository
func NewPineconeVectorRepository(client *db.PineconeClient) VectorRepository {
	return &PineconeVectorRepository{
		client: client,
	}
}

// Query searches the index for the nearest records
func (r *PineconeVectorRepository) Query(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]*Match, error) {
	if topK <= 0 {
		return nil, NewVectorRepositoryError("query", nil, fmt.Sprintf("invalid topK: %d", topK))
	}

	resp, err := r.client.Query(ctx, queryVector, topK, filter)
	if err != nil {
		return nil, NewVectorRepositoryError("query", err, "vector query failed")
	}

	matches := make([]*Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		metadata := m.Metadata
		if metadata == nil {
			metadata = make(map[string]interface{})
		}

		content := ""
		if c, ok := metadata[metadataContentKey].(string); ok {
			content = c
		}

		// Records without content text carry no usable evidence
		if content == "" {
			continue
		}

		price := float64(0)
		if p, ok := metadata[metadataPriceKey].(float64); ok {
			price = p
		}

		matches = append(matches, &Match{
			ID:       m.ID,
			Content:  content,
			Price:    price,
			Score:    m.Score,
			Metadata: metadata,
		})
	}

	return matches, nil
}

// Ping checks if Pinecone is alive
func (r *PineconeVectorRepository) Ping(ctx context.Context) error {
	err := r.client.Heartbeat(ctx)
	if err != nil {
		return NewVectorRepositoryError("ping", err, "pinecone heartbeat failed")
	}
	return nil
}

// Close closes the Pinecone client
func (r *PineconeVectorRepository) Close() error {
	r.client.Close()
	return nil
}
