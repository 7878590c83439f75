package config

import (
	"encoding/json"
	"os"
)

// AssistantConfig holds the business heuristics of the assistant. The
// generic-term list and the zero-ceiling-means-unfiltered rule are tuning
// knobs, not invariants, so they live here rather than in the pipeline code.
type AssistantConfig struct {
	// GenericTerms are descriptions too unspecific to carry semantic signal.
	// Combined with a price ceiling they trigger filter-only retrieval.
	GenericTerms []string `json:"generic_terms"`

	// FallbackQuery is embedded instead of the user's description when the
	// strict semantic tier finds nothing.
	FallbackQuery string `json:"fallback_query"`

	// GenericTopK caps results for filter-only retrieval ("list everything
	// that fits"); SemanticTopK caps the semantic tiers.
	GenericTopK  int `json:"generic_top_k"`
	SemanticTopK int `json:"semantic_top_k"`

	// HistoryWindow is the number of recent messages shown to the
	// classifier and the responder.
	HistoryWindow int `json:"history_window"`

	// Dealers maps a lower-cased province name to its dealer directory text
	Dealers map[string]string `json:"dealers"`

	// FinancingInfo is the static financing answer
	FinancingInfo string `json:"financing_info"`

	// SpecSheets maps a lower-cased model slug to a PDF filename under SpecSheetDir
	SpecSheets   map[string]string `json:"spec_sheets"`
	SpecSheetDir string            `json:"spec_sheet_dir"`

	// TestDriveFields are the fields the test-drive lead form collects
	TestDriveFields []string `json:"test_drive_fields"`
}

// DefaultAssistantConfig returns the configuration matching the SEAT range
// assistant's observed behavior.
func DefaultAssistantConfig() *AssistantConfig {
	return &AssistantConfig{
		GenericTerms: []string{
			"car", "cars", "a car", "vehicle", "vehicles",
			"model", "models", "the models", "show me the models",
			"coche", "coches", "un coche", "los modelos",
		},
		FallbackQuery: "show all available models",
		GenericTopK:   10,
		SemanticTopK:  5,
		HistoryWindow: 4,
		Dealers: map[string]string{
			"madrid":    "SEAT Madrid Centro - Calle de Alcalá 171, Madrid. Tel: 910 000 111",
			"barcelona": "SEAT Barcelona Diagonal - Avinguda Diagonal 453, Barcelona. Tel: 930 000 222",
			"valencia":  "SEAT Valencia Port - Avinguda del Port 98, Valencia. Tel: 960 000 333",
			"sevilla":   "SEAT Sevilla Nervión - Avenida de Luis Montoto 89, Sevilla. Tel: 950 000 444",
		},
		FinancingInfo: "We offer financing from 0% APR on selected models, with terms " +
			"between 24 and 72 months and an optional final balloon payment. " +
			"Ask any official dealer for a personalized quote.",
		SpecSheets: map[string]string{
			"ibiza":      "seat-ibiza.pdf",
			"leon":       "seat-leon.pdf",
			"arona":      "seat-arona.pdf",
			"ateca":      "seat-ateca.pdf",
			"tarraco":    "seat-tarraco.pdf",
			"mii":        "seat-mii-electric.pdf",
		},
		SpecSheetDir:    "./spec-sheets",
		TestDriveFields: []string{"name", "email", "phone", "model", "province"},
	}
}

// LoadAssistantConfig reads an AssistantConfig from a JSON file, starting
// from the defaults so partial files only override what they set.
func LoadAssistantConfig(path string) (*AssistantConfig, error) {
	cfg := DefaultAssistantConfig()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
