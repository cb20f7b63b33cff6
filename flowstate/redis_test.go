package flowstate

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		_, client := setupTestRedis(t)
		return NewRedisStoreWithClient(client, "test:", zap.NewNop())
	})
}

func TestRedisStore_Keys(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStoreWithClient(client, "test:", nil)

	require.NoError(t, s.Save(context.Background(), "f1", newState("f1", baseTime)))

	assert.True(t, mr.Exists("test:flowstate:data:f1"))
	members, err := mr.ZMembers("test:flowstate:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, members)
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStoreWithClient(client, "", nil)

	require.NoError(t, s.Save(context.Background(), "f1", newState("f1", baseTime)))
	assert.True(t, mr.Exists(DefaultKeyPrefix+"flowstate:data:f1"))
}

func TestRedisStore_ListSkipsDanglingIndex(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStoreWithClient(client, "test:", nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "f1", newState("f1", baseTime)))
	mr.Del("test:flowstate:data:f1")

	res, err := s.List(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, res.FlowStates)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStoreWithClient(client, "test:", nil)

	require.NoError(t, mr.Set("test:flowstate:data:bad", "{oops"))
	_, err := s.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CloseKeepsBorrowedClient(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewRedisStoreWithClient(client, "test:", nil)

	require.NoError(t, s.Close())
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := NewRedisStore(RedisConfig{Addr: mr.Addr(), KeyPrefix: "own:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), "f1", newState("f1", baseTime)))
	assert.True(t, mr.Exists("own:flowstate:data:f1"))
	assert.NoError(t, s.Close())
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(RedisConfig{Addr: addr}, nil)
	assert.Error(t, err)
}
