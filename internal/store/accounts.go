package store

import (
	"sync"

	"github.com/finwatch-dev/finwatch/internal/model"
)

// AccountStore is an in-memory keyed cache of account snapshots. It lives
// for the process lifetime and is rebuilt by every account sync. Both the
// notifier loop and slash-command handlers hit it concurrently, so all
// access goes through the mutex.
type AccountStore struct {
	mu    sync.RWMutex
	order []string // insertion order of first occurrence
	byID  map[string]model.Account
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{byID: make(map[string]model.Account)}
}

// Upsert inserts or replaces the snapshot for an account ID. Replacement
// keeps the account's original position in iteration order.
func (s *AccountStore) Upsert(a model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = a
}

// Get returns the snapshot for an account ID.
func (s *AccountStore) Get(id string) (model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	return a, ok
}

// Query returns all accounts matching pred, in insertion order.
func (s *AccountStore) Query(pred func(model.Account) bool) []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Account
	for _, id := range s.order {
		if a := s.byID[id]; pred(a) {
			result = append(result, a)
		}
	}
	return result
}

// Len returns the number of cached accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
