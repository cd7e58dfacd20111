package reconcile

import (
	"context"

	"github.com/redis/go-redis/v9"

	"alternator-reqgen/internal/common/database"
	apperrors "alternator-reqgen/internal/common/errors"
)

const operationsKeySuffix = ":operations"

// RedisStore keeps one hash per operation (field = body, value = response)
// and a set listing the operations.
type RedisStore struct {
	client *redis.Client
	owner  *database.RedisClient
	prefix string
}

func NewRedisStore(client *database.RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client.Client, owner: client, prefix: prefix}
}

// NewRedisStoreFromClient uses rdb without taking ownership of it.
func NewRedisStoreFromClient(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: rdb, prefix: prefix}
}

func (s *RedisStore) operationsKey() string { return s.prefix + operationsKeySuffix }

func (s *RedisStore) operationKey(op string) string { return s.prefix + ":" + op }

func (s *RedisStore) Load(ctx context.Context) (*History, error) {
	ops, err := s.client.SMembers(ctx, s.operationsKey()).Result()
	if err != nil {
		return nil, apperrors.NewStoreFailedError(BackendRedis, "load", err)
	}
	h := NewHistory()
	for _, op := range ops {
		bodies, err := s.client.HGetAll(ctx, s.operationKey(op)).Result()
		if err != nil {
			return nil, apperrors.NewStoreFailedError(BackendRedis, "load", err)
		}
		for body, resp := range bodies {
			h.Put(op, body, resp)
		}
	}
	return h, nil
}

// Persist writes every entry inside one MULTI/EXEC block.
func (s *RedisStore) Persist(ctx context.Context, h *History) error {
	ops := h.Operations()
	if len(ops) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			bodies := h.Bodies(op)
			if len(bodies) == 0 {
				continue
			}
			fields := make(map[string]interface{}, len(bodies))
			for _, b := range bodies {
				resp, _ := h.Lookup(op, b)
				fields[b] = resp
			}
			pipe.SAdd(ctx, s.operationsKey(), op)
			pipe.HSet(ctx, s.operationKey(op), fields)
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreFailedError(BackendRedis, "persist", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.owner != nil {
		return s.owner.Close()
	}
	return nil
}
