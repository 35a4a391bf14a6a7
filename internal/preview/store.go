package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds result markup under revocable tokens. An artifact registers
// its markup lazily when first displayed; the preview HTTP endpoint serves
// it until the owning artifact revokes the token.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewStore() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Register stores data and returns a fresh token for it.
func (s *Store) Register(data string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.docs[token] = []byte(data)
	s.mu.Unlock()
	return token
}

// Get returns the bytes for token, or false if the token was never issued
// or has been revoked.
func (s *Store) Get(token string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[token]
	return b, ok
}

// Revoke frees the bytes behind token. Revoking an unknown token is a no-op.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.docs, token)
	s.mu.Unlock()
}

// Len reports the number of live tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
