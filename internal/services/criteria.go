package services

import (
	"strings"

	"seat-assistant/internal/models"
)

// NormalizeCriteria validates and canonicalizes the raw criteria extracted
// by the classifier, merging with the previous turn's criteria so follow-up
// refinements ("and under 30000?") inherit what they don't restate.
//
// The classifier should already have routed description-less turns to the
// unknown intent; this re-validates defensively and returns
// ErrEmptyDescription rather than letting an empty query reach the store.
func NormalizeCriteria(raw *models.SearchCriteria, prev *models.SearchCriteria) (models.SearchCriteria, error) {
	var criteria models.SearchCriteria
	if raw != nil {
		criteria = *raw
	}

	criteria.Description = strings.TrimSpace(criteria.Description)

	// Zero and negative ceilings both mean "don't filter"
	if criteria.PriceCeiling < 0 {
		criteria.PriceCeiling = 0
	}

	criteria = criteria.Merge(prev)

	if criteria.Description == "" {
		return models.SearchCriteria{}, ErrEmptyDescription
	}

	return criteria, nil
}
