package services

import "errors"

// The pipeline's closed failure taxonomy. Every failure is caught at the
// component boundary and converted to user-visible copy by the assistant;
// none of these propagate as raw faults to the conversation surface.

// ErrEmptyDescription is the terminal "cannot search" validation failure:
// criteria without a description never reach the retriever.
var ErrEmptyDescription = errors.New("search criteria have no description")

// RetrievalError wraps a retrieval-tier call failure. Tiers advance only on
// zero matches, never on error, so one of these aborts the whole search.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "retrieval failed: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError wraps a response-generation failure, including mid-stream
// errors after partial output.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "response generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
