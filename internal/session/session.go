// Package session holds the bearer token of the signed-in user for the life of
// the process. Nothing is persisted.
package session

import (
	"sync"
	"sync/atomic"
)

type Listener func(token string, ok bool)

type Session struct {
	token atomic.Pointer[string]

	// writeMu orders token changes with their notifications.
	writeMu sync.Mutex

	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

func New() *Session {
	return &Session{
		listeners: make(map[int]Listener),
	}
}

// OnLoginSuccess replaces any previous token.
func (s *Session) OnLoginSuccess(token string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.token.Store(&token)
	s.notify(token, true)
}

func (s *Session) OnLogout() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.token.Store(nil)
	s.notify("", false)
}

func (s *Session) CurrentToken() (string, bool) {
	p := s.token.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.CurrentToken()
	return ok
}

// Subscribe registers fn to be called after every token change. Calls arrive
// in the order the changes were made. fn must not sign in or out itself.
func (s *Session) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Session) notify(token string, ok bool) {
	s.mu.Lock()
	fns := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(token, ok)
	}
}
