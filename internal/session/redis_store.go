package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so several processes can share them.
// Entries are written without a TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	seed   int64
}

func NewRedisStore(client redis.UniversalClient, prefix string, seed int64) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		seed:   seed,
	}
}

func (st *RedisStore) counterKey() string {
	return st.prefix + "counter"
}

func (st *RedisStore) sessionKey(id string) string {
	return st.prefix + "session:" + id
}

func (st *RedisStore) Create(ctx context.Context, data Data) (string, error) {
	payload, err := json.Marshal(data.clone())
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	var incr *redis.IntCmd
	if _, err := st.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, st.counterKey(), st.seed, 0)
		incr = pipe.Incr(ctx, st.counterKey())
		return nil
	}); err != nil {
		return "", fmt.Errorf("allocate session id: %w", err)
	}

	id := strconv.FormatInt(incr.Val(), 10)
	if err := st.client.Set(ctx, st.sessionKey(id), payload, 0).Err(); err != nil {
		return "", fmt.Errorf("save session %s: %w", id, err)
	}
	return id, nil
}

func (st *RedisStore) Get(ctx context.Context, id string) (Data, error) {
	raw, err := st.client.Get(ctx, st.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if data == nil {
		data = Data{}
	}
	return data, nil
}

func (st *RedisStore) Delete(ctx context.Context, id string) error {
	if err := st.client.Del(ctx, st.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (st *RedisStore) Close() error {
	return st.client.Close()
}
