package handler

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	stateStoreSize = 4096
	stateTTL       = 10 * time.Minute
)

// stateStore holds the per-redirect OAuth state values. Entries expire by
// TTL and are evicted LRU-first under pressure; consumption removes the
// entry so a state cannot be replayed.
type stateStore struct {
	items *expirable.LRU[string, struct{}]
}

func newStateStore() *stateStore {
	return &stateStore{items: expirable.NewLRU[string, struct{}](stateStoreSize, nil, stateTTL)}
}

func (s *stateStore) Create() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	state := hex.EncodeToString(buf)
	s.items.Add(state, struct{}{})
	return state
}

func (s *stateStore) Consume(state string) bool {
	if state == "" {
		return false
	}
	if _, ok := s.items.Get(state); !ok {
		return false
	}
	s.items.Remove(state)
	return true
}
