package flowstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore is a Redis-based implementation of Store. State documents are
// stored as JSON strings; a sorted set scored by start time indexes them.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
	ownClient bool
}

// Compile-time interface compliance check.
var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis as configured and verifies the connection.
func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s := NewRedisStoreWithClient(client, cfg.KeyPrefix, logger)
	s.ownClient = true
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client. The client is not closed
// by Close.
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix + "flowstate:",
		logger:    logger.With(zap.String("component", "flow_state_store")),
	}
}

// dataKey returns the Redis key of a state document
func (s *RedisStore) dataKey(id string) string {
	return s.keyPrefix + "data:" + id
}

// indexKey returns the Redis key of the start-time index
func (s *RedisStore) indexKey() string {
	return s.keyPrefix + "index"
}

// Save stores state under id.
func (s *RedisStore) Save(ctx context.Context, id string, state *FlowState) error {
	if state == nil {
		return ErrInvalidInput
	}
	id = resolveID(id, state)
	if state.StartTime.IsZero() {
		state.StartTime = time.Now()
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal flow state: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.dataKey(id), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(state.StartTime.UnixNano()), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("flow state save failed", zap.String("flow_id", id), zap.Error(err))
		return fmt.Errorf("save flow state %s: %w", id, err)
	}
	return nil
}

// Load returns the state stored under id.
func (s *RedisStore) Load(ctx context.Context, id string) (*FlowState, error) {
	data, err := s.client.Get(ctx, s.dataKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load flow state %s: %w", id, err)
	}

	var st FlowState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal flow state %s: %w", id, err)
	}
	return &st, nil
}

// List returns states ordered by start time, newest first.
func (s *RedisStore) List(ctx context.Context, query Query) (*ListResult, error) {
	offset, limit, err := page(query)
	if err != nil {
		return nil, err
	}

	// One extra member tells whether another page exists.
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), int64(offset), int64(offset+limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("list flow states: %w", err)
	}
	more := len(ids) > limit
	if more {
		ids = ids[:limit]
	}

	out := make([]*FlowState, 0, len(ids))
	for _, id := range ids {
		st, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Index entry without a document; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return &ListResult{FlowStates: out, ContinuationToken: nextToken(offset, limit, more)}, nil
}

// Close closes the client when the store created it.
func (s *RedisStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}
