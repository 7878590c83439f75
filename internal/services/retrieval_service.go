package services

import (
	"context"
	"log"
	"strings"
	"time"

	"seat-assistant/config"
	"seat-assistant/internal/models"
	"seat-assistant/internal/repositories"
)

// contextSeparator joins retrieved record contents into the Context blob
const contextSeparator = "\n\n---\n\n"

// RetrievalService turns validated search criteria into vector-store
// queries, falling back through successively looser tiers until it finds
// matches or exhausts its strategy:
//
//  1. generic-filter: price ceiling + generic description, zero-vector
//     query so ranking is driven purely by the structured filter
//  2. strict-semantic: embed the user's description
//  3. relaxed-semantic: embed the fixed fallback phrase, keep the filter
//
// Tiers advance only on zero matches; an error aborts the search.
type RetrievalService struct {
	llm        LLMClientInterface
	vectorRepo repositories.VectorRepository
	cache      repositories.EmbeddingCache
	cfg        *config.AssistantConfig
	logger     *log.Logger
}

// NewRetrievalService creates a new tiered retrieval service
func NewRetrievalService(
	llm LLMClientInterface,
	vectorRepo repositories.VectorRepository,
	cache repositories.EmbeddingCache,
	cfg *config.AssistantConfig,
	logger *log.Logger,
) *RetrievalService {
	if cache == nil {
		cache = repositories.NoopEmbeddingCache{}
	}
	return &RetrievalService{
		llm:        llm,
		vectorRepo: vectorRepo,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
	}
}

// Retrieve runs the tier chain for the given criteria. A nil error with an
// empty result is the legitimate no-match outcome; a *RetrievalError means
// the search could not be carried out at all.
func (s *RetrievalService) Retrieve(ctx context.Context, criteria models.SearchCriteria) (*models.RetrievalResult, error) {
	startTime := time.Now()
	filter := s.buildPriceFilter(criteria)

	// Tier 1: filter-only retrieval for generic descriptions. Without a
	// price filter a generic description is just a broad semantic query,
	// so this tier requires both.
	if filter != nil && s.isGeneric(criteria.NormalizedDescription()) {
		s.logger.Printf("Generic description %q with price ceiling %.0f: filter-only retrieval",
			criteria.Description, criteria.PriceCeiling)

		matches, err := s.vectorRepo.Query(ctx, make([]float32, EmbeddingDimension), s.cfg.GenericTopK, filter)
		if err != nil {
			return nil, &RetrievalError{Err: err}
		}

		// The description wasn't embedded, so it passes through unchanged
		return s.buildResult(criteria.Description, matches, false, startTime), nil
	}

	// Tier 2: strict semantic retrieval with the user's own description
	embedding, err := s.embed(ctx, criteria.Description)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	matches, err := s.vectorRepo.Query(ctx, embedding, s.cfg.SemanticTopK, filter)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	if len(matches) > 0 {
		return s.buildResult(criteria.Description, matches, false, startTime), nil
	}

	// Tier 3: the description may be too specific for any record (a color,
	// a feature nothing mentions). Relax the semantic query but keep the
	// structured filter so filter-eligible records still surface.
	s.logger.Printf("No matches for %q, relaxing to fallback query", criteria.Description)

	embedding, err = s.embed(ctx, s.cfg.FallbackQuery)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	matches, err = s.vectorRepo.Query(ctx, embedding, s.cfg.SemanticTopK, filter)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	if len(matches) > 0 {
		return s.buildResult(s.cfg.FallbackQuery, matches, true, startTime), nil
	}

	// No-match terminal: the caller renders the nothing-found copy
	s.logger.Printf("No matches in any tier for %q (%.2fms)",
		criteria.Description, time.Since(startTime).Seconds()*1000)
	return &models.RetrievalResult{}, nil
}

// buildPriceFilter returns the structured filter for the criteria, or nil
// when the ceiling is zero or absent (zero means "don't filter", it is
// never a valid ceiling).
func (s *RetrievalService) buildPriceFilter(criteria models.SearchCriteria) map[string]interface{} {
	if !criteria.HasPriceFilter() {
		return nil
	}
	return map[string]interface{}{
		"price": map[string]interface{}{"$lte": criteria.PriceCeiling},
	}
}

func (s *RetrievalService) isGeneric(normalized string) bool {
	for _, term := range s.cfg.GenericTerms {
		if normalized == term {
			return true
		}
	}
	return false
}

// embed returns the embedding for text, consulting the cache first
func (s *RetrievalService) embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := s.cache.Get(ctx, text); ok {
		return cached, nil
	}

	embedding, err := s.llm.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, text, embedding)
	return embedding, nil
}

func (s *RetrievalService) buildResult(effectiveDescription string, matches []*repositories.Match, relaxed bool, startTime time.Time) *models.RetrievalResult {
	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		contents = append(contents, m.Content)
	}

	s.logger.Printf("Retrieved %d records (relaxed=%v) in %.2fms",
		len(matches), relaxed, time.Since(startTime).Seconds()*1000)

	return &models.RetrievalResult{
		Context:              strings.Join(contents, contextSeparator),
		EffectiveDescription: effectiveDescription,
		Relaxed:              relaxed,
		MatchCount:           len(matches),
	}
}
