package profile

import (
	"context"
	"sync"

	"lifecoo/internal/domain"
)

type memoryStore struct {
	mu    sync.RWMutex
	saved *domain.TripRequest
}

func (s *memoryStore) Load(ctx context.Context) (domain.TripRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.saved == nil {
		return domain.TripRequest{}, domain.ErrNoProfile
	}
	return *s.saved, nil
}

func (s *memoryStore) Save(ctx context.Context, profile domain.TripRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = &profile
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
