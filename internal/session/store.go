// Package session keeps track of logged-in users between requests.
//
// A session is identified by the decimal form of a counter owned by the
// store. The counter starts at a configured seed and is incremented before
// each allocation, so the first id handed out is seed+1. Ids are predictable
// and there is no server-side expiry: an entry lives until it is deleted.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSessionNotFound indicates no session is stored under the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownBackend is returned by NewStore for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown session backend")
)

// KeyUsername is the Data key holding the authenticated username.
const KeyUsername = "username"

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultSeed is the counter value before the first allocation.
const DefaultSeed int64 = 1

// Data is the payload attached to a session.
type Data map[string]string

// Username returns the authenticated username, if any.
func (d Data) Username() (string, bool) {
	v, ok := d[KeyUsername]
	return v, ok
}

func (d Data) clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Store is the only way to reach session state.
type Store interface {
	Create(ctx context.Context, data Data) (string, error)
	Get(ctx context.Context, id string) (Data, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config selects and parameterizes a Store backend.
type Config struct {
	Backend string
	Seed    int64
	Redis   RedisConfig
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewStore builds the backend named in cfg.
func NewStore(ctx context.Context, cfg Config, logger logrus.FieldLogger) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		logger.Info("using in-memory session store")
		return NewMemoryStore(cfg.Seed), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		logger.Infof("using redis session store at %s", cfg.Redis.Addr)
		return NewRedisStore(client, cfg.Redis.KeyPrefix, cfg.Seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
