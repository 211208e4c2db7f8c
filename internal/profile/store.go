// Package profile persists the saved family trip profile.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"lifecoo/internal/domain"
	"lifecoo/internal/ports"
)

// StoreType selects a profile driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
)

// DefaultKey names the saved profile record.
const DefaultKey = "lifeCooFamilyProfile_v1"

var (
	ErrInvalidStoreType = errors.New("invalid profile store type")
	ErrInvalidConfig    = errors.New("invalid profile store configuration")
)

type storeConfig struct {
	path        string
	key         string
	redisClient *redis.Client
}

// StoreOption configures a profile store.
type StoreOption func(*storeConfig)

// WithPath sets the JSON file used by the file driver.
func WithPath(path string) StoreOption {
	return func(c *storeConfig) { c.path = path }
}

// WithKey sets the record key used by the redis driver.
func WithKey(key string) StoreOption {
	return func(c *storeConfig) { c.key = key }
}

// WithRedisClient supplies the client used by the redis driver. The store
// closes it on Close.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) { c.redisClient = client }
}

// NewStore builds the profile store for storeType.
func NewStore(storeType StoreType, opts ...StoreOption) (ports.ProfileStore, error) {
	cfg := &storeConfig{key: DefaultKey}
	for _, opt := range opts {
		opt(cfg)
	}

	switch StoreType(strings.ToLower(string(storeType))) {
	case StoreTypeMemory:
		return &memoryStore{}, nil

	case StoreTypeFile:
		if strings.TrimSpace(cfg.path) == "" {
			return nil, fmt.Errorf("%w: file store needs a path", ErrInvalidConfig)
		}
		return &fileStore{path: cfg.path}, nil

	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis store needs a client", ErrInvalidConfig)
		}
		if strings.TrimSpace(cfg.key) == "" {
			cfg.key = DefaultKey
		}
		return &redisStore{client: cfg.redisClient, key: cfg.key}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}

func encode(profile domain.TripRequest) ([]byte, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

func decode(data []byte) (domain.TripRequest, error) {
	var profile domain.TripRequest
	if err := json.Unmarshal(data, &profile); err != nil {
		return domain.TripRequest{}, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}
