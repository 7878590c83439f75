package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sashabaranov/go-openai"

	"seat-assistant/internal/models"
)

const (
	// EmbeddingDimension is the fixed vector size of the embedding model,
	// matching the dimension of the external index.
	EmbeddingDimension = 1536

	defaultChatModel      = openai.GPT4o
	defaultEmbeddingModel = openai.SmallEmbedding3
)

// LLMClientInterface is the surface of the language-model collaborator the
// pipeline depends on. Kept minimal so tests can mock it.
type LLMClientInterface interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Complete(ctx context.Context, messages []models.ChatMessage, temperature float32) (string, error)
	Stream(ctx context.Context, messages []models.ChatMessage, temperature float32) (<-chan models.StreamFragment, error)
	HealthCheck(ctx context.Context) error
}

// OpenAIService implements LLMClientInterface against the OpenAI API
type OpenAIService struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	logger         *log.Logger
}

// NewOpenAIService creates a new OpenAI service instance. chatModel may be
// empty to use the default.
func NewOpenAIService(apiKey, chatModel string, logger *log.Logger) *OpenAIService {
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	return &OpenAIService{
		client:         openai.NewClient(apiKey),
		chatModel:      chatModel,
		embeddingModel: defaultEmbeddingModel,
		logger:         logger,
	}
}

// Embed converts text into a fixed-length embedding vector
func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: s.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	return resp.Data[0].Embedding, nil
}

// Complete runs a chat completion and returns the full response text
func (s *OpenAIService) Complete(ctx context.Context, messages []models.ChatMessage, temperature float32) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.chatModel,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from completion API")
	}

	return resp.Choices[0].Message.Content, nil
}

// Stream runs a chat completion in streaming mode. The returned channel is
// closed when the completion finishes; a mid-stream failure is delivered as
// a final fragment with Err set, after any partial output.
func (s *OpenAIService) Stream(ctx context.Context, messages []models.ChatMessage, temperature float32) (<-chan models.StreamFragment, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       s.chatModel,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}

	fragments := make(chan models.StreamFragment)

	go func() {
		defer close(fragments)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.logger.Printf("Completion stream failed mid-response: %v", err)
				fragments <- models.StreamFragment{Err: err}
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}

			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}

			select {
			case fragments <- models.StreamFragment{Text: delta}:
			case <-ctx.Done():
				// Consumer may already be gone; don't block on the error fragment
				select {
				case fragments <- models.StreamFragment{Err: ctx.Err()}:
				default:
				}
				return
			}
		}
	}()

	return fragments, nil
}

// HealthCheck verifies the OpenAI API is reachable with the configured key
func (s *OpenAIService) HealthCheck(ctx context.Context) error {
	_, err := s.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("OpenAI API not reachable: %w", err)
	}
	return nil
}

func toOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
