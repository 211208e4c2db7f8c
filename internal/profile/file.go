package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"lifecoo/internal/domain"
)

// fileStore keeps the profile as a single JSON document on disk.
type fileStore struct {
	path string
	mu   sync.Mutex
}

func (s *fileStore) Load(ctx context.Context) (domain.TripRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.TripRequest{}, domain.ErrNoProfile
	}
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("read profile: %w", err)
	}
	return decode(data)
}

// Save replaces the file atomically.
func (s *fileStore) Save(ctx context.Context, profile domain.TripRequest) error {
	data, err := encode(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func (s *fileStore) Close() error {
	return nil
}
