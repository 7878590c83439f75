package models

// Session owns one conversation: its ordered history and the criteria of
// the most recent search turn, used to merge follow-up refinements.
// History is append-only and only mutated between request boundaries.
type Session struct {
	ID           string          `json:"id"`
	History      []ChatMessage   `json:"history"`
	LastCriteria *SearchCriteria `json:"last_criteria,omitempty"`
}

// AppendTurn records one completed exchange
func (s *Session) AppendTurn(userText, assistantText string) {
	s.History = append(s.History,
		ChatMessage{Role: "user", Content: userText},
		ChatMessage{Role: "assistant", Content: assistantText},
	)
}

// BoundedHistory returns the most recent maxMessages entries of the history
func (s *Session) BoundedHistory(maxMessages int) []ChatMessage {
	if maxMessages <= 0 || len(s.History) <= maxMessages {
		return s.History
	}
	return s.History[len(s.History)-maxMessages:]
}
