package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smallbiznis/tractionlens/internal/cache"
	"github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
)

// MemoryStore keeps sessions in process. Sessions are stored encoded so a
// caller mutating a returned session never changes the stored copy.
type MemoryStore struct {
	items cache.Cache[string, []byte]
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: cache.NewTTLCache[string, []byte](),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	raw, ok := s.items.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return session.Normalize(), nil
}

func (s *MemoryStore) Save(_ context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	s.items.Set(session.ID, raw, s.ttl)
	return nil
}

// Close stops the eviction loop.
func (s *MemoryStore) Close() {
	s.items.Close()
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.items.Delete(id)
	return nil
}
