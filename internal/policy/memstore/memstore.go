// Package memstore provides an in-memory implementation of policy.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/warden/internal/policy"
)

// Store holds the policy in memory. Suitable for dev/testing.
type Store struct {
	mu    sync.RWMutex
	p     policy.Policy
	saved bool
}

// New initializes an empty in-memory Store.
func New() *Store {
	return &Store{}
}

// Load returns the saved policy, or ok=false if nothing was saved yet.
func (s *Store) Load(_ context.Context) (policy.Policy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return policy.Policy{}, false, nil
	}
	return s.p, true, nil
}

// Save stores the policy.
func (s *Store) Save(_ context.Context, p policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
	s.saved = true
	return nil
}
