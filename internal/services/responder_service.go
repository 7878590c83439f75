package services

import (
	"context"
	"fmt"
	"log"

	"seat-assistant/config"
	"seat-assistant/internal/models"
)

// responseTemperature matches the original assistant's generation settings
const responseTemperature = 0.5

// ResponderService composes the assistant's answer strictly from retrieved
// evidence. It is never invoked with an empty Context; the caller renders
// the canned no-match copy instead.
type ResponderService struct {
	llm    LLMClientInterface
	cfg    *config.AssistantConfig
	logger *log.Logger
}

// NewResponderService creates a new grounded responder
func NewResponderService(llm LLMClientInterface, cfg *config.AssistantConfig, logger *log.Logger) *ResponderService {
	return &ResponderService{
		llm:    llm,
		cfg:    cfg,
		logger: logger,
	}
}

// Respond returns the complete grounded answer for a question
func (s *ResponderService) Respond(ctx context.Context, question string, result *models.RetrievalResult, history []models.ChatMessage) (string, error) {
	answer, err := s.llm.Complete(ctx, s.buildMessages(question, result, history), responseTemperature)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return answer, nil
}

// Stream returns the grounded answer as a lazy, finite sequence of text
// fragments. A mid-stream failure arrives as a final fragment with Err set,
// after any partial output; partial output is never silently truncated.
// A non-streaming caller simply concatenates the sequence.
func (s *ResponderService) Stream(ctx context.Context, question string, result *models.RetrievalResult, history []models.ChatMessage) (<-chan models.StreamFragment, error) {
	fragments, err := s.llm.Stream(ctx, s.buildMessages(question, result, history), responseTemperature)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	return fragments, nil
}

func (s *ResponderService) buildMessages(question string, result *models.RetrievalResult, history []models.ChatMessage) []models.ChatMessage {
	system := fmt.Sprintf(
		"You are the SEAT range assistant, friendly and helpful. Your only source "+
			"of knowledge is the context below. Answer the user's question clearly and "+
			"concisely based exclusively on that information. Never state a fact that "+
			"is not in the context; if the answer is not there, say you do not have "+
			"that information. Do not invent anything.\n\nCONTEXT:\n%s",
		result.Context)

	if result.Relaxed {
		system += fmt.Sprintf(
			"\n\nThe context was found with the broader query %q because nothing "+
				"matched the user's exact request. Say explicitly which requested "+
				"details you could not confirm, and present these models as the "+
				"closest available alternative. Never pretend they match exactly.",
			result.EffectiveDescription)
	}

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: question})
	return messages
}
