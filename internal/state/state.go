// Package state holds the result of a pending asynchronous operation, one slot
// per view.
package state

import (
	"context"
	"sync"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is exactly one of Idle, Loading, Success with Value, or Error with Err.
type Result[T any] struct {
	Phase Phase
	Value T
	Err   error
}

// Ticket identifies one Begin call.
type Ticket uint64

// Slot applies only the response to the most recent request.
type Slot[T any] struct {
	mu     sync.Mutex
	gen    Ticket
	cancel context.CancelFunc
	result Result[T]
	notify func(Result[T])
}

// OnChange registers fn to receive every state transition. It is called with
// the slot lock released.
func (s *Slot[T]) OnChange(fn func(Result[T])) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Begin moves the slot to Loading and cancels the previous in-flight request.
// The returned context must be used for the new request.
func (s *Slot[T]) Begin(ctx context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ticket := s.gen
	s.cancel = cancel
	s.result = Result[T]{Phase: Loading}
	res, fn := s.result, s.notify
	s.mu.Unlock()

	if fn != nil {
		fn(res)
	}
	return ctx, ticket
}

// Resolve stores the outcome for ticket. It reports false and changes nothing
// when a newer request has started or the slot was reset.
func (s *Slot[T]) Resolve(ticket Ticket, value T, err error) bool {
	s.mu.Lock()
	if ticket != s.gen || s.result.Phase != Loading {
		s.mu.Unlock()
		return false
	}

	if err != nil {
		s.result = Result[T]{Phase: Error, Err: err}
	} else {
		s.result = Result[T]{Phase: Success, Value: value}
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	res, fn := s.result, s.notify
	s.mu.Unlock()

	if fn != nil {
		fn(res)
	}
	return true
}

// Reset returns to Idle and cancels in-flight work so late responses are
// dropped.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.result = Result[T]{Phase: Idle}
	res, fn := s.result, s.notify
	s.mu.Unlock()

	if fn != nil {
		fn(res)
	}
}

func (s *Slot[T]) Current() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
