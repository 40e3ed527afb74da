// Package qstate tracks per-question verification state for one screen
// session. It is not safe for concurrent use; all access happens on the
// Bubble Tea update goroutine.
package qstate

import "context"

// State is the verification state of one question.
type State struct {
	// Attempted is true once a verification response has been accepted.
	Attempted bool
	// Correct is the verdict of the most recently accepted verification.
	Correct bool
	// Pending is true while a request for Generation is in flight.
	Pending bool
	// Generation identifies the most recent request issued.
	Generation uint64

	cancel context.CancelCauseFunc
}

// Begin starts a new request generation. Any outstanding request must have
// been aborted first.
func (s *State) Begin(cancel context.CancelCauseFunc) uint64 {
	s.Generation++
	s.Pending = true
	s.cancel = cancel
	return s.Generation
}

// Outstanding reports whether a cancellation handle is held.
func (s *State) Outstanding() bool {
	return s.cancel != nil
}

// Abort cancels the outstanding request with cause and clears Pending.
// Returns false if nothing was outstanding.
func (s *State) Abort(cause error) bool {
	if s.cancel == nil {
		return false
	}
	s.cancel(cause)
	s.cancel = nil
	s.Pending = false
	return true
}

// Accept records an accepted verdict for the current generation.
func (s *State) Accept(correct bool) {
	s.Attempted = true
	s.Correct = correct
	s.release()
}

// Fail clears Pending after a failed request without marking the question
// attempted.
func (s *State) Fail() {
	s.release()
}

func (s *State) release() {
	s.Pending = false
	if s.cancel != nil {
		s.cancel(nil)
		s.cancel = nil
	}
}

// Store holds the states of a session, created lazily on first access.
type Store struct {
	states map[string]*State
	order  []string
}

// New returns an empty Store.
func New() *Store {
	return &Store{states: make(map[string]*State)}
}

// Get returns the state for id, creating it if needed.
func (s *Store) Get(id string) *State {
	if st, ok := s.states[id]; ok {
		return st
	}
	st := &State{}
	s.states[id] = st
	s.order = append(s.order, id)
	return st
}

// Lookup returns a copy of the state for id without creating one.
func (s *Store) Lookup(id string) (State, bool) {
	st, ok := s.states[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Each calls fn for every state in creation order.
func (s *Store) Each(fn func(id string, st State)) {
	for _, id := range s.order {
		fn(id, *s.states[id])
	}
}

// Len returns the number of tracked questions.
func (s *Store) Len() int {
	return len(s.order)
}

// AbortAll cancels every outstanding request with cause and returns how
// many were aborted.
func (s *Store) AbortAll(cause error) int {
	n := 0
	for _, id := range s.order {
		if s.states[id].Abort(cause) {
			n++
		}
	}
	return n
}
