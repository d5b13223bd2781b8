package session_test

import (
	"testing"

	"github.com/viettravel/tourhub/internal/client/session"
	"github.com/viettravel/tourhub/internal/client/token"
)

func TestNew_StartsLoading(t *testing.T) {
	s := session.New()
	if got := s.State(); got != session.StateLoading {
		t.Errorf("initial state = %v; want loading", got)
	}
}

func TestHydrate(t *testing.T) {
	s := session.New()
	s.Hydrate(token.Credentials{AccessToken: "A", RefreshToken: "R", DeviceID: "d"})
	if got := s.State(); got != session.StateSignedIn {
		t.Errorf("state after hydrate with token = %v; want signed-in", got)
	}

	s2 := session.New()
	s2.Hydrate(token.Credentials{})
	if got := s2.State(); got != session.StateSignedOut {
		t.Errorf("state after empty hydrate = %v; want signed-out", got)
	}
}

func TestSubscribe_NotifiesOnChange(t *testing.T) {
	s := session.New()
	var seen []session.State
	cancel := s.Subscribe(func(st session.State) { seen = append(seen, st) })

	s.SignIn()
	s.SignOut()
	cancel()
	s.SignIn() // after cancel: not delivered

	want := []session.State{session.StateLoading, session.StateSignedIn, session.StateSignedOut}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v; want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %v; want %v", i, seen[i], want[i])
		}
	}
}

func TestSet_SkipsDuplicateStates(t *testing.T) {
	s := session.New()
	count := 0
	s.Subscribe(func(session.State) { count++ })

	s.SignOut()
	s.SignOut()
	s.SignOut()

	// One immediate call plus exactly one transition.
	if count != 2 {
		t.Errorf("notification count = %d; want 2", count)
	}
}
