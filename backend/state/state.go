package state

import (
	"sync"
	"time"

	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

// Record is one accepted token as written to the result log.
type Record struct {
	Token   string
	URL     string
	FoundAt time.Time
	Verdict verdict.Verdict
	Reason  string
}

// Counters is a consistent copy of the run counters.
type Counters struct {
	Total     int
	Completed int
	Tested    int
	Accepted  int
}

// State is the run-wide bookkeeping shared by all workers.
//
// Lock order: State.mu is always taken before any lock held inside the Sink.
// The Sink never calls back into State.
type State struct {
	mu          sync.Mutex
	total       int
	completed   int
	tested      map[string]struct{}
	accepted    []Record
	sink        Sink
	persistErrs []error
}

// New returns a State for a run of total tokens. A nil sink keeps accepted
// tokens in memory only.
func New(total int, sink Sink) *State {
	return &State{
		total:  total,
		tested: make(map[string]struct{}, total),
		sink:   sink,
	}
}

// ClaimIfUnseen marks token as tested and reports whether the caller won it.
func (s *State) ClaimIfUnseen(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tested[token]; ok {
		return false
	}
	s.tested[token] = struct{}{}
	return true
}

// RecordAccepted appends rec and persists it under the same lock, so the
// in-memory list and the log agree on order. A persistence failure is kept
// for the summary and returned; the in-memory record stands.
func (s *State) RecordAccepted(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted = append(s.accepted, rec)
	if s.sink == nil {
		return nil
	}
	if err := s.sink.Append(rec); err != nil {
		s.persistErrs = append(s.persistErrs, err)
		return err
	}
	return nil
}

// IncrementCompleted bumps the completed count and returns the new value.
func (s *State) IncrementCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	return s.completed
}

func (s *State) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counters{
		Total:     s.total,
		Completed: s.completed,
		Tested:    len(s.tested),
		Accepted:  len(s.accepted),
	}
}

// Accepted returns the accepted records in discovery order.
func (s *State) Accepted() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.accepted...)
}

func (s *State) PersistErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.persistErrs...)
}
