package models

import "strings"

// Intent is the closed set of things a user turn can ask for
type Intent string

const (
	IntentSearch        Intent = "search"
	IntentFinancingInfo Intent = "financing_info"
	IntentDealerLookup  Intent = "dealer_lookup"
	IntentSpecSheet     Intent = "spec_sheet"
	IntentTestDrive     Intent = "test_drive"
	IntentUnknown       Intent = "unknown"
)

// Valid reports whether i is one of the closed intents
func (i Intent) Valid() bool {
	switch i {
	case IntentSearch, IntentFinancingInfo, IntentDealerLookup,
		IntentSpecSheet, IntentTestDrive, IntentUnknown:
		return true
	}
	return false
}

// IntentResult is the discriminated outcome of classifying one turn.
// Which entity fields are meaningful depends on Intent: Province for
// dealer_lookup, Model for spec_sheet/test_drive, Criteria for search.
type IntentResult struct {
	Intent   Intent          `json:"intent"`
	Province string          `json:"province,omitempty"`
	Model    string          `json:"model,omitempty"`
	Criteria *SearchCriteria `json:"criteria,omitempty"`
}

// SearchCriteria is the normalized, validated search intent.
// A PriceCeiling of zero (or below) means unconstrained, never "free":
// the retriever must not emit a price filter for it.
type SearchCriteria struct {
	PriceCeiling float64 `json:"price_ceiling,omitempty"`
	Description  string  `json:"description"`
}

// NormalizedDescription returns the description lower-cased and trimmed,
// for comparison against the generic-term set. The original-case
// description is what gets embedded and echoed back to the user.
func (c SearchCriteria) NormalizedDescription() string {
	return strings.ToLower(strings.TrimSpace(c.Description))
}

// HasPriceFilter reports whether the criteria carry a usable price ceiling
func (c SearchCriteria) HasPriceFilter() bool {
	return c.PriceCeiling > 0
}

// Merge fills gaps in c from a previous turn's criteria, so a follow-up
// like "and under 30000?" inherits the prior description.
func (c SearchCriteria) Merge(prev *SearchCriteria) SearchCriteria {
	if prev == nil {
		return c
	}
	merged := c
	if strings.TrimSpace(merged.Description) == "" {
		merged.Description = prev.Description
	}
	if merged.PriceCeiling <= 0 && prev.PriceCeiling > 0 {
		merged.PriceCeiling = prev.PriceCeiling
	}
	return merged
}

// RetrievalResult is the outcome of the tiered retriever. An empty Context
// is the explicit no-match state, distinct from a populated one.
type RetrievalResult struct {
	Context              string `json:"context"`
	EffectiveDescription string `json:"effective_description"`
	Relaxed              bool   `json:"relaxed"` // true when the relaxed-semantic tier produced the match
	MatchCount           int    `json:"match_count"`
}

// Found reports whether any evidence was retrieved
func (r RetrievalResult) Found() bool {
	return r.MatchCount > 0
}
