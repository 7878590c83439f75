package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"seat-assistant/config"
	"seat-assistant/internal/models"
)

// IntentClassifier maps a user turn to one of the closed intents plus its
// entities. Classification is two-stage: deterministic keyword matchers run
// first (fast, reproducible, no external call) and win over the model-based
// fallback, so literal triggers like "financing" are never misrouted to an
// open-ended search.
type IntentClassifier struct {
	llm      LLMClientInterface
	cfg      *config.AssistantConfig
	logger   *log.Logger
	matchers []keywordMatcher
}

// keywordMatcher is one deterministic stage of the classification chain
type keywordMatcher struct {
	intent  models.Intent
	tokens  []string // single-token triggers, matched against the token set
	phrases []string // multi-word triggers, matched as substrings
}

// NewIntentClassifier creates a classifier with the fixed per-intent lexicons
func NewIntentClassifier(llm LLMClientInterface, cfg *config.AssistantConfig, logger *log.Logger) *IntentClassifier {
	matchers := []keywordMatcher{
		{
			intent: models.IntentFinancingInfo,
			tokens: []string{"financing", "finance", "financed", "loan", "apr", "leasing", "installments", "financiacion", "financiación"},
		},
		{
			intent:  models.IntentDealerLookup,
			tokens:  []string{"dealer", "dealers", "dealership", "dealerships", "concesionario", "concesionarios"},
			phrases: []string{"where can i buy"},
		},
		{
			intent:  models.IntentSpecSheet,
			tokens:  []string{"specsheet", "brochure", "datasheet", "ficha"},
			phrases: []string{"spec sheet", "tech sheet", "technical sheet", "ficha tecnica", "ficha técnica"},
		},
		{
			intent:  models.IntentTestDrive,
			tokens:  []string{"testdrive"},
			phrases: []string{"test drive", "test-drive", "prueba de conduccion", "prueba de conducción"},
		},
	}

	return &IntentClassifier{
		llm:      llm,
		cfg:      cfg,
		logger:   logger,
		matchers: matchers,
	}
}

// Classify resolves the intent and entities for one turn. It never returns
// an error: any failure downgrades to the unknown intent, and the caller
// presents the could-not-understand message.
func (c *IntentClassifier) Classify(ctx context.Context, text string, history []models.ChatMessage) models.IntentResult {
	lowered := strings.ToLower(text)
	tokens := tokenize(lowered)

	for _, m := range c.matchers {
		if !m.matches(lowered, tokens) {
			continue
		}
		c.logger.Printf("Keyword match: intent=%s", m.intent)
		return c.resolveEntities(ctx, m.intent, text, tokens, history)
	}

	return c.classifyWithModel(ctx, text, history)
}

func (m keywordMatcher) matches(lowered string, tokens map[string]bool) bool {
	for _, t := range m.tokens {
		if tokens[t] {
			return true
		}
	}
	for _, p := range m.phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// tokenize builds a lower-cased token set for a turn. Prose gives proper
// word segmentation; if it fails, whitespace splitting is close enough for
// lexicon matching.
func tokenize(lowered string) map[string]bool {
	tokens := make(map[string]bool)

	doc, err := prose.NewDocument(lowered)
	if err != nil {
		for _, w := range strings.Fields(lowered) {
			tokens[strings.Trim(w, ".,;:!?¿¡\"'")] = true
		}
		return tokens
	}

	for _, tok := range doc.Tokens() {
		tokens[strings.ToLower(tok.Text)] = true
	}
	return tokens
}

// resolveEntities fills in the entity a keyword-matched intent needs. When
// the entity isn't literally present in the turn, a secondary lightweight
// extraction call resolves just that field from the bounded history window.
func (c *IntentClassifier) resolveEntities(ctx context.Context, intent models.Intent, text string, tokens map[string]bool, history []models.ChatMessage) models.IntentResult {
	result := models.IntentResult{Intent: intent}

	switch intent {
	case models.IntentDealerLookup:
		result.Province = c.findKnown(tokens, provinceNames(c.cfg))
		if result.Province == "" {
			result.Province = c.extractEntity(ctx, "province", text, history, provinceNames(c.cfg))
		}
	case models.IntentSpecSheet, models.IntentTestDrive:
		result.Model = c.findKnown(tokens, modelNames(c.cfg))
		if result.Model == "" {
			result.Model = c.extractEntity(ctx, "car model", text, history, modelNames(c.cfg))
		}
	}

	return result
}

func (c *IntentClassifier) findKnown(tokens map[string]bool, known []string) string {
	for _, name := range known {
		if tokens[name] {
			return name
		}
	}
	return ""
}

// extractEntity asks the model for a single field value and validates it
// against the known set. Any failure leaves the entity empty.
func (c *IntentClassifier) extractEntity(ctx context.Context, field, text string, history []models.ChatMessage, known []string) string {
	system := fmt.Sprintf(
		"Extract the %s the user refers to. Answer with exactly one of: %s. "+
			"If none applies, answer exactly: unknown. No other words.",
		field, strings.Join(known, ", "))

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: text})

	answer, err := c.llm.Complete(ctx, messages, 0)
	if err != nil {
		c.logger.Printf("Entity extraction failed for %s: %v", field, err)
		return ""
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, name := range known {
		if answer == name {
			return name
		}
	}
	return ""
}

// classifierPayload is the closed JSON object the model fallback must emit
type classifierPayload struct {
	Intent       string  `json:"intent"`
	Province     string  `json:"province,omitempty"`
	Model        string  `json:"model,omitempty"`
	PriceCeiling float64 `json:"price_ceiling,omitempty"`
	Description  string  `json:"description,omitempty"`
}

const classifierSystemPrompt = `You classify a user's turn in a car-range assistant conversation.
Answer with a single JSON object and nothing else:
{"intent": "...", "province": "...", "model": "...", "price_ceiling": 0, "description": "..."}

"intent" must be one of: search, financing_info, dealer_lookup, spec_sheet, test_drive, unknown.
For search, set "description" to what the user is looking for (omit the price from it) and
"price_ceiling" to the maximum price if one is stated, else 0. When the turn refines a
previous search, merge it with the earlier criteria from the conversation.
For dealer_lookup set "province"; for spec_sheet and test_drive set "model" (lower-case slug).
If you cannot tell what the user wants, use intent "unknown".`

// classifyWithModel is the catch-all final stage of the chain. It fails
// closed: malformed or empty structured output downgrades to unknown.
func (c *IntentClassifier) classifyWithModel(ctx context.Context, text string, history []models.ChatMessage) models.IntentResult {
	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: classifierSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: text})

	answer, err := c.llm.Complete(ctx, messages, 0)
	if err != nil {
		c.logger.Printf("Model classification failed: %v", err)
		return models.IntentResult{Intent: models.IntentUnknown}
	}

	payload, err := decodeClassifierPayload(answer)
	if err != nil {
		c.logger.Printf("Malformed classifier output: %v", err)
		return models.IntentResult{Intent: models.IntentUnknown}
	}

	intent := models.Intent(payload.Intent)
	if !intent.Valid() {
		c.logger.Printf("Classifier returned unlisted intent %q", payload.Intent)
		return models.IntentResult{Intent: models.IntentUnknown}
	}

	result := models.IntentResult{
		Intent:   intent,
		Province: strings.ToLower(strings.TrimSpace(payload.Province)),
		Model:    strings.ToLower(strings.TrimSpace(payload.Model)),
	}

	if intent == models.IntentSearch {
		result.Criteria = &models.SearchCriteria{
			PriceCeiling: payload.PriceCeiling,
			Description:  strings.TrimSpace(payload.Description),
		}
		if result.Criteria.Description == "" {
			// A search with nothing to search for is not a search
			return models.IntentResult{Intent: models.IntentUnknown}
		}
	}

	return result
}

// decodeClassifierPayload parses the model's JSON, tolerating surrounding
// prose or code fences by cutting to the outermost object.
func decodeClassifierPayload(answer string) (*classifierPayload, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in classifier output")
	}

	var payload classifierPayload
	if err := json.Unmarshal([]byte(answer[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse classifier output: %w", err)
	}
	return &payload, nil
}

func provinceNames(cfg *config.AssistantConfig) []string {
	names := make([]string, 0, len(cfg.Dealers))
	for name := range cfg.Dealers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func modelNames(cfg *config.AssistantConfig) []string {
	names := make([]string, 0, len(cfg.SpecSheets))
	for name := range cfg.SpecSheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
