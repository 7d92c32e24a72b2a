package rag

import "ai-docchat-be/pkg/store"

// State is the mutable record threaded through one workflow run. It is
// created at request start and discarded at request end, never shared across
// runs. Branch goroutines return their outputs to the orchestrator, which is
// the only writer, so the struct itself needs no locking.
type State struct {
	// Inputs
	Query     string
	Documents []store.RawDocument
	SessionID string

	// Intermediates
	CleanedQuery string
	QueryVector  []float32
	Retrieved    []RetrievedChunk
	Context      string

	// Outputs
	Response               string
	Citations              []string
	ChunkIDs               []string
	Status                 Status
	Errors                 []string
	DocProcessingCompleted bool
}

func (s *State) appendError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// advance moves the run to next when the transition is legal. Illegal moves
// are logged and dropped so nothing can rewind the machine.
func (s *State) advance(next Status, rl *RunLogger) {
	if !s.Status.CanTransition(next) {
		rl.Intermediate("fsm", map[string]interface{}{
			"from": string(s.Status),
			"to":   string(next),
		}, "Illegal status transition dropped")
		return
	}
	prev := s.Status
	s.Status = next
	rl.Transition(prev, next)
}

// fail marks the run terminal with the error that forced it. The message is
// expected to already be in Errors; here it only shapes the response.
func (s *State) fail(msg string, rl *RunLogger) {
	s.Response = "I apologize, but I encountered an error: " + msg
	s.advance(StatusError, rl)
}
