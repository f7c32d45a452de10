package auth

import (
	"sync"
	"time"
)

// pendingLogin is what start hands to callback through the state parameter.
type pendingLogin struct {
	verifier string
	next     string
	expires  time.Time
}

type stateStore struct {
	mu    sync.Mutex
	items map[string]pendingLogin
	now   func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]pendingLogin), now: time.Now}
}

// put also drops expired states so abandoned logins do not accumulate.
func (s *stateStore) put(state string, login pendingLogin) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.items {
		if now.After(v.expires) {
			delete(s.items, k)
		}
	}
	s.items[state] = login
}

// consume returns the pending login once. Expired entries are never returned.
func (s *stateStore) consume(state string) (pendingLogin, bool) {
	s.mu.Lock()
	login, ok := s.items[state]
	delete(s.items, state)
	s.mu.Unlock()
	if !ok || s.now().After(login.expires) {
		return pendingLogin{}, false
	}
	return login, true
}

func (s *stateStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
