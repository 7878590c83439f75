package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"seat-assistant/internal/models"
	"seat-assistant/internal/repositories"
)

// ============================================================================
// Mock Collaborators
// ============================================================================

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockLLMClient) Complete(ctx context.Context, messages []models.ChatMessage, temperature float32) (string, error) {
	args := m.Called(ctx, messages, temperature)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Stream(ctx context.Context, messages []models.ChatMessage, temperature float32) (<-chan models.StreamFragment, error) {
	args := m.Called(ctx, messages, temperature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan models.StreamFragment), args.Error(1)
}

func (m *MockLLMClient) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockVectorRepository struct {
	mock.Mock
}

func (m *MockVectorRepository) Query(ctx context.Context, queryVector []float32, topK int, filter map[string]interface{}) ([]*repositories.Match, error) {
	args := m.Called(ctx, queryVector, topK, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.Match), args.Error(1)
}

func (m *MockVectorRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// fakeEmbeddingCache is an in-memory stand-in for the Redis-backed cache
type fakeEmbeddingCache struct {
	entries map[string][]float32
}

func newFakeEmbeddingCache() *fakeEmbeddingCache {
	return &fakeEmbeddingCache{entries: make(map[string][]float32)}
}

func (c *fakeEmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	embedding, ok := c.entries[text]
	return embedding, ok
}

func (c *fakeEmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	c.entries[text] = embedding
}

// ============================================================================
// Test Helpers
// ============================================================================

func fragmentChannel(fragments ...models.StreamFragment) <-chan models.StreamFragment {
	out := make(chan models.StreamFragment, len(fragments))
	for _, f := range fragments {
		out <- f
	}
	close(out)
	return out
}

func testEmbedding() []float32 {
	embedding := make([]float32, EmbeddingDimension)
	embedding[0] = 0.42
	return embedding
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return len(v) == EmbeddingDimension
}

func testMatches(contents ...string) []*repositories.Match {
	matches := make([]*repositories.Match, 0, len(contents))
	for i, content := range contents {
		matches = append(matches, &repositories.Match{
			ID:      string(rune('a' + i)),
			Content: content,
			Price:   20000 + float64(i)*1000,
			Score:   0.9 - float32(i)*0.1,
		})
	}
	return matches
}
