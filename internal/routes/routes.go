package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"seat-assistant/internal/handlers"
)

// Handlers groups everything RegisterRoutes wires up
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc

	ChatHandler *handlers.ChatHandler
	InfoHandler *handlers.InfoHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/llm/health", h.ChatHandler.LLMHealth).Methods("GET")

	// Conversation
	router.HandleFunc("/chat", h.ChatHandler.Chat).Methods("POST", "OPTIONS")
	router.HandleFunc("/chat/stream", h.ChatHandler.ChatStream).Methods("GET")

	// Static lookups behind the non-search intents
	router.HandleFunc("/dealers", h.InfoHandler.Dealers).Methods("GET")
	router.HandleFunc("/financing", h.InfoHandler.Financing).Methods("GET")
	router.HandleFunc("/spec-sheets/{model}", h.InfoHandler.SpecSheet).Methods("GET")
	router.HandleFunc("/test-drive", h.InfoHandler.TestDrive).Methods("POST", "OPTIONS")

	// Main route
	router.HandleFunc("/", h.Home).Methods("GET")
}
