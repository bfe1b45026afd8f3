package savelock

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/robobooks/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestQuoteLock_DisabledWithoutRedis(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	lock, err := NewQuoteLock(lc, config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lock.Enabled())

	token, ok, err := lock.TryLockQuote(context.Background(), snowflake.ID(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, token)
	assert.NoError(t, lock.ReleaseQuote(context.Background(), snowflake.ID(1), token))
}

func TestQuoteLock_NilGrantsEverything(t *testing.T) {
	var lock *QuoteLock
	_, ok, err := lock.TryLockQuote(context.Background(), snowflake.ID(1))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQuoteLock_RejectsNonPositiveTTL(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	_, err := NewQuoteLock(lc, config.Config{RedisAddr: "localhost:6379", QuoteLockTTLSeconds: 0}, zap.NewNop())
	assert.Error(t, err)
}

func TestQuoteLockKey(t *testing.T) {
	assert.Equal(t, "quote:lock:1234", QuoteLockKey(snowflake.ID(1234)))
}

func TestQuoteLock_NilClientIsDisabled(t *testing.T) {
	lock := newQuoteLock(nil, time.Second)
	assert.False(t, lock.Enabled())

	token, ok, err := lock.TryLockQuote(context.Background(), snowflake.ID(7))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, lock.ReleaseQuote(context.Background(), snowflake.ID(7), token))
}

func TestQuoteLock_EnabledRejectsZeroQuoteID(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	lock := newQuoteLock(client, time.Second)
	assert.True(t, lock.Enabled())

	_, ok, err := lock.TryLockQuote(context.Background(), 0)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, lock.ReleaseQuote(context.Background(), snowflake.ID(7), ""), "empty token never reaches redis")
}
