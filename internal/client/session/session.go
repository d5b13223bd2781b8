// Package session tracks process-wide authentication state. The session is
// an explicit, injectable object constructed at the application root; there
// is no package-level singleton. Subscribers (route guards, the shell) are
// notified on every state change.
package session

import (
	"sync"

	"github.com/viettravel/tourhub/internal/client/token"
)

// State is the closed set of authentication states.
type State int

const (
	// StateLoading holds only while credentials hydrate from storage.
	StateLoading State = iota
	// StateSignedOut means no usable access token is held.
	StateSignedOut
	// StateSignedIn means a non-empty access token is held.
	StateSignedIn
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSignedOut:
		return "signed-out"
	case StateSignedIn:
		return "signed-in"
	default:
		return "unknown"
	}
}

// Session derives authentication state from the token store and fans state
// changes out to subscribers.
type Session struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]func(State)
}

// New returns a Session in StateLoading, pending Hydrate.
func New() *Session {
	return &Session{state: StateLoading, subs: map[int]func(State){}}
}

// State returns the current authentication state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hydrate completes initial loading from the given credentials snapshot.
// Once hydration completes the state always reflects token presence.
func (s *Session) Hydrate(c token.Credentials) {
	if c.AccessToken != "" {
		s.set(StateSignedIn)
	} else {
		s.set(StateSignedOut)
	}
}

// SignIn marks the session authenticated, after a successful login.
func (s *Session) SignIn() { s.set(StateSignedIn) }

// SignOut marks the session unauthenticated, after logout or invalidation.
func (s *Session) SignOut() { s.set(StateSignedOut) }

// Subscribe registers fn for state-change notifications and returns a
// cancel function. fn is called immediately with the current state so the
// subscriber does not miss transitions that already happened.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	cur := s.state
	s.mu.Unlock()

	fn(cur)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) set(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	// Notify outside the lock; a subscriber may call back into the session.
	for _, fn := range subs {
		fn(next)
	}
}
