package models

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// ChatRequest represents the incoming chat request from the frontend
type ChatRequest struct {
	Message   string `json:"message"`              // The current user message
	SessionID string `json:"session_id,omitempty"` // Conversation to continue; empty starts a new one
}

// ChatResponse represents the response sent back to the frontend
type ChatResponse struct {
	Message   string `json:"message"`    // The assistant's response
	SessionID string `json:"session_id"` // Conversation identifier for follow-up turns
	Intent    string `json:"intent,omitempty"`
	Status    string `json:"status"` // "success" or "error"
}

// StreamFragment is one incrementally produced piece of an assistant response.
// A fragment with Err set is always the last one delivered.
type StreamFragment struct {
	Text string
	Err  error
}

// TestDriveForm describes the lead-capture form shown for a test-drive request
type TestDriveForm struct {
	Model  string   `json:"model,omitempty"` // Pre-filled model slug, if one was extracted
	Fields []string `json:"fields"`          // Fields the frontend must collect
}

// TestDriveRequest represents a submitted test-drive lead
type TestDriveRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Model    string `json:"model"`
	Province string `json:"province,omitempty"`
}

// BasicResponse is a minimal status payload for health and acknowledgement endpoints
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
