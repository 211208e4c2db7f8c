package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lifecoo/internal/domain"
)

// redisStore keeps the profile under one key with no expiry.
type redisStore struct {
	client *redis.Client
	key    string
}

func (s *redisStore) Load(ctx context.Context) (domain.TripRequest, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.TripRequest{}, domain.ErrNoProfile
	}
	if err != nil {
		return domain.TripRequest{}, fmt.Errorf("read profile %s: %w", s.key, err)
	}
	return decode(val)
}

func (s *redisStore) Save(ctx context.Context, profile domain.TripRequest) error {
	data, err := encode(profile)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write profile %s: %w", s.key, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
