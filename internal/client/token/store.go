// Package token owns the client's durable credentials: access token,
// refresh token and device id, persisted as a single JSON file. The store
// also keeps the per-page list positions that survive reloads; nothing else
// is durable on the client.
package token

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Credentials is the persisted credential triple. All fields are opaque
// strings owned by the backend. AccessToken and RefreshToken are either both
// present or both absent outside the refresh window.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
}

// Empty reports whether no session credentials are held.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

type fileState struct {
	Credentials
	// Positions maps a page key to the saved list/scroll position.
	Positions map[string]int `json:"positions,omitempty"`
}

// Store is the single shared mutable resource of the client core. Writes
// replace the whole credential record, so concurrent writers cannot produce
// a torn access/refresh pair; the last writer wins.
type Store struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// Open loads the store from path, creating an empty one if the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, state: fileState{Positions: map[string]int{}}}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&s.state); err != nil {
		return nil, err
	}
	if s.state.Positions == nil {
		s.state.Positions = map[string]int{}
	}
	return s, nil
}

// Get returns a snapshot of the current credentials.
func (s *Store) Get() Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Credentials
}

// Set atomically replaces all three credential fields and persists them.
func (s *Store) Set(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Credentials = c
	return s.save()
}

// Clear removes all three credential fields and persists the removal.
// Page positions survive a logout.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Credentials = Credentials{}
	return s.save()
}

// EnsureDeviceID returns the stored device id, generating and persisting a
// new one when none exists yet (first login on this client).
func (s *Store) EnsureDeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.DeviceID != "" {
		return s.state.DeviceID, nil
	}
	s.state.DeviceID = uuid.NewString()
	if err := s.save(); err != nil {
		return "", err
	}
	return s.state.DeviceID, nil
}

// PagePosition returns the saved list position for the given page key, or 0.
func (s *Store) PagePosition(page string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Positions[page]
}

// SetPagePosition persists the list position for the given page key.
func (s *Store) SetPagePosition(page string, pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Positions[page] = pos
	return s.save()
}

// save writes the state file. Caller must hold s.mu.
func (s *Store) save() error {
	buf, err := json.Marshal(&s.state)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, buf, 0o600)
}
