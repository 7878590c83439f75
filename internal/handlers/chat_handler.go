package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"seat-assistant/internal/models"
	"seat-assistant/internal/services"
)

// ChatHandler handles conversational turns, synchronous and streamed
type ChatHandler struct {
	assistant *services.AssistantService
	llm       services.LLMClientInterface
	logger    *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant *services.AssistantService, llm services.LLMClientInterface, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		llm:       llm,
		logger:    logger,
	}
}

// chatTurnResponse extends ChatResponse with the test-drive form when one applies
type chatTurnResponse struct {
	models.ChatResponse
	Form *models.TestDriveForm `json:"form,omitempty"`
}

// Chat handles one conversational turn
// @Summary Chat with the assistant
// @Description Send a message and get the assistant's full response
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Chat request with message and optional session ID"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var request models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Printf("Failed to decode chat request: %v", err)
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.Message == "" {
		h.sendError(w, http.StatusBadRequest, "Message is required")
		return
	}

	turn := h.assistant.HandleTurn(r.Context(), request.SessionID, request.Message)

	h.sendJSON(w, http.StatusOK, chatTurnResponse{
		ChatResponse: models.ChatResponse{
			Message:   turn.Message,
			SessionID: turn.SessionID,
			Intent:    string(turn.Intent),
			Status:    "success",
		},
		Form: turn.Form,
	})
}

// ChatStream handles one conversational turn over server-sent events
// @Summary Chat with the assistant (streaming)
// @Description Send a message and receive the response as server-sent events
// @Tags chat
// @Produce text/event-stream
// @Param message query string true "User message"
// @Param session_id query string false "Session to continue"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} ErrorResponse
// @Router /chat/stream [get]
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		h.sendError(w, http.StatusBadRequest, "Query parameter 'message' is required")
		return
	}
	sessionID := r.URL.Query().Get("session_id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.sendError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream := h.assistant.HandleTurnStream(r.Context(), sessionID, message)

	h.writeEvent(w, "meta", map[string]string{
		"session_id": stream.SessionID,
		"intent":     string(stream.Intent),
	})
	flusher.Flush()

	for fragment := range stream.Fragments {
		h.writeEvent(w, "", map[string]string{"text": fragment.Text})
		flusher.Flush()
	}

	// Fragments are displayed in arrival order; [DONE] marks the end
	if _, err := w.Write([]byte("data: [DONE]\n\n")); err != nil {
		h.logger.Printf("Failed to write stream terminator: %v", err)
	}
	flusher.Flush()
}

// LLMHealth checks if the language-model collaborator is reachable
// @Summary Check LLM health
// @Description Check if the OpenAI API is reachable with the configured key
// @Tags chat
// @Produce json
// @Success 200 {object} models.BasicResponse
// @Failure 503 {object} models.BasicResponse
// @Router /llm/health [get]
func (h *ChatHandler) LLMHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.llm.HealthCheck(r.Context()); err != nil {
		h.sendJSON(w, http.StatusServiceUnavailable, models.BasicResponse{
			Message: "LLM service is not available: " + err.Error(),
			Status:  "error",
		})
		return
	}

	h.sendJSON(w, http.StatusOK, models.BasicResponse{
		Message: "LLM service is available",
		Status:  "success",
	})
}

// Helper methods

func (h *ChatHandler) writeEvent(w http.ResponseWriter, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to encode SSE payload: %v", err)
		return
	}
	if event != "" {
		if _, err := w.Write([]byte("event: " + event + "\n")); err != nil {
			h.logger.Printf("Failed to write SSE event: %v", err)
			return
		}
	}
	if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		h.logger.Printf("Failed to write SSE data: %v", err)
	}
}

func (h *ChatHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *ChatHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}
