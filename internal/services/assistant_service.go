package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"seat-assistant/config"
	"seat-assistant/internal/models"
)

// User-visible copy. "No matching data" and "could not process" are
// different failure taxonomy members and must render different messages.
const (
	msgCouldNotUnderstand = "Sorry, I didn't understand that. Could you rephrase your question?"
	msgNothingFound       = "I couldn't find any models in our range matching your request."
	msgCannotProcess      = "Sorry, something went wrong while processing your request. Please try again in a moment."
)

// AssistantService orchestrates one conversational turn: classify the
// intent, run the retrieval pipeline for searches, answer non-search
// intents from static lookups, and keep the session history. Every failure
// is converted to user-visible copy here; nothing propagates as a raw
// fault to the conversation surface.
type AssistantService struct {
	classifier *IntentClassifier
	retriever  *RetrievalService
	responder  *ResponderService
	sessions   *SessionStore
	cfg        *config.AssistantConfig
	logger     *log.Logger
}

// NewAssistantService creates the turn orchestrator
func NewAssistantService(
	classifier *IntentClassifier,
	retriever *RetrievalService,
	responder *ResponderService,
	sessions *SessionStore,
	cfg *config.AssistantConfig,
	logger *log.Logger,
) *AssistantService {
	return &AssistantService{
		classifier: classifier,
		retriever:  retriever,
		responder:  responder,
		sessions:   sessions,
		cfg:        cfg,
		logger:     logger,
	}
}

// TurnResult is the completed outcome of one turn
type TurnResult struct {
	SessionID string
	Intent    models.Intent
	Message   string
	Form      *models.TestDriveForm // Set for test-drive turns
}

// TurnStream is the streaming outcome of one turn. Fragments is finite and
// non-restartable; it is closed when the response is complete.
type TurnStream struct {
	SessionID string
	Intent    models.Intent
	Fragments <-chan models.StreamFragment
}

// HandleTurn processes one user turn to completion and returns the full
// response text.
func (s *AssistantService) HandleTurn(ctx context.Context, sessionID, text string) *TurnResult {
	session := s.sessions.GetOrCreate(sessionID)
	history := session.BoundedHistory(s.cfg.HistoryWindow)

	result := s.classifier.Classify(ctx, text, history)
	s.logger.Printf("Turn classified: session=%s intent=%s", session.ID, result.Intent)

	turn := &TurnResult{SessionID: session.ID, Intent: result.Intent}

	if result.Intent == models.IntentSearch {
		turn.Message = s.answerSearch(ctx, session, text, result.Criteria, history)
	} else {
		turn.Message, turn.Form = s.answerStatic(result)
	}

	session.AppendTurn(text, turn.Message)
	return turn
}

// HandleTurnStream processes one user turn, streaming the response. Only
// search answers are truly incremental; everything else arrives as a single
// fragment.
func (s *AssistantService) HandleTurnStream(ctx context.Context, sessionID, text string) *TurnStream {
	session := s.sessions.GetOrCreate(sessionID)
	history := session.BoundedHistory(s.cfg.HistoryWindow)

	result := s.classifier.Classify(ctx, text, history)
	s.logger.Printf("Turn classified: session=%s intent=%s (stream)", session.ID, result.Intent)

	stream := &TurnStream{SessionID: session.ID, Intent: result.Intent}

	if result.Intent != models.IntentSearch {
		message, _ := s.answerStatic(result)
		session.AppendTurn(text, message)
		stream.Fragments = singleFragment(message)
		return stream
	}

	retrieval, message := s.retrieveForSearch(ctx, session, result.Criteria)
	if retrieval == nil {
		// Terminal state before generation: canned copy, single fragment
		session.AppendTurn(text, message)
		stream.Fragments = singleFragment(message)
		return stream
	}

	fragments, err := s.responder.Stream(ctx, text, retrieval, history)
	if err != nil {
		s.logger.Printf("Failed to open response stream: %v", err)
		session.AppendTurn(text, msgCannotProcess)
		stream.Fragments = singleFragment(msgCannotProcess)
		return stream
	}

	out := make(chan models.StreamFragment)
	stream.Fragments = out

	go func() {
		defer close(out)
		var full strings.Builder
		for fragment := range fragments {
			if fragment.Err != nil {
				// Keep partial output visible and append the error message
				// rather than truncating silently
				s.logger.Printf("Response stream failed mid-answer: %v", fragment.Err)
				out <- models.StreamFragment{Text: "\n\n" + msgCannotProcess}
				full.WriteString("\n\n" + msgCannotProcess)
				break
			}
			out <- fragment
			full.WriteString(fragment.Text)
		}
		session.AppendTurn(text, full.String())
	}()

	return stream
}

// answerSearch runs normalize → retrieve → respond, mapping each failure
// to its copy.
func (s *AssistantService) answerSearch(ctx context.Context, session *models.Session, text string, criteria *models.SearchCriteria, history []models.ChatMessage) string {
	retrieval, message := s.retrieveForSearch(ctx, session, criteria)
	if retrieval == nil {
		return message
	}

	answer, err := s.responder.Respond(ctx, text, retrieval, history)
	if err != nil {
		s.logger.Printf("Response generation failed: %v", err)
		return msgCannotProcess
	}
	return answer
}

// retrieveForSearch normalizes and retrieves. A nil result means the turn
// ended in a terminal state and the returned message is the reply.
func (s *AssistantService) retrieveForSearch(ctx context.Context, session *models.Session, criteria *models.SearchCriteria) (*models.RetrievalResult, string) {
	normalized, err := NormalizeCriteria(criteria, session.LastCriteria)
	if err != nil {
		if !errors.Is(err, ErrEmptyDescription) {
			s.logger.Printf("Criteria validation failed: %v", err)
		}
		return nil, msgCouldNotUnderstand
	}

	session.LastCriteria = &normalized

	retrieval, err := s.retriever.Retrieve(ctx, normalized)
	if err != nil {
		s.logger.Printf("Retrieval failed: %v", err)
		return nil, msgCannotProcess
	}

	if !retrieval.Found() {
		return nil, msgNothingFound
	}

	return retrieval, ""
}

// answerStatic resolves all non-search intents from configured lookups
func (s *AssistantService) answerStatic(result models.IntentResult) (string, *models.TestDriveForm) {
	switch result.Intent {
	case models.IntentFinancingInfo:
		return s.cfg.FinancingInfo, nil

	case models.IntentDealerLookup:
		return s.dealerAnswer(result.Province), nil

	case models.IntentSpecSheet:
		return s.specSheetAnswer(result.Model), nil

	case models.IntentTestDrive:
		message := "Great! Fill in the form below and a dealer will get in touch to arrange your test drive."
		if result.Model != "" {
			message = fmt.Sprintf("Great choice! Fill in the form below and a dealer will get in touch to arrange your %s test drive.",
				titleCase(result.Model))
		}
		return message, &models.TestDriveForm{
			Model:  result.Model,
			Fields: s.cfg.TestDriveFields,
		}

	default:
		return msgCouldNotUnderstand, nil
	}
}

func (s *AssistantService) dealerAnswer(province string) string {
	if province != "" {
		if dealer, ok := s.cfg.Dealers[province]; ok {
			return fmt.Sprintf("Your nearest dealer in %s:\n%s", titleCase(province), dealer)
		}
	}

	provinces := make([]string, 0, len(s.cfg.Dealers))
	for name := range s.cfg.Dealers {
		provinces = append(provinces, name)
	}
	sort.Strings(provinces)

	var b strings.Builder
	b.WriteString("Here are our official dealers:\n")
	for _, name := range provinces {
		fmt.Fprintf(&b, "- %s: %s\n", titleCase(name), s.cfg.Dealers[name])
	}
	return b.String()
}

func (s *AssistantService) specSheetAnswer(model string) string {
	if model != "" {
		if _, ok := s.cfg.SpecSheets[model]; ok {
			return fmt.Sprintf("You can download the %s technical spec sheet here: /spec-sheets/%s",
				titleCase(model), model)
		}
	}

	names := modelNames(s.cfg)
	return fmt.Sprintf("Which model's spec sheet would you like? Available models: %s.",
		strings.Join(names, ", "))
}

// titleCase capitalizes the first letter of a slug for display
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func singleFragment(text string) <-chan models.StreamFragment {
	out := make(chan models.StreamFragment, 1)
	out <- models.StreamFragment{Text: text}
	close(out)
	return out
}
