package savelock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/robobooks/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyQuoteLock = "quote:lock:%s"

// releaseQuoteScript deletes the quote key only while it still holds the
// caller's token, so a save that outlived its TTL cannot free a newer holder.
const releaseQuoteScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var Module = fx.Module("savelock",
	fx.Provide(NewQuoteLock),
)

// QuoteLock serializes concurrent saves of one quote across API replicas.
// A nil or disabled QuoteLock grants every request.
type QuoteLock struct {
	client  *redis.Client
	release *redis.Script
	ttl     time.Duration
}

// NewQuoteLock returns a disabled lock when no Redis address is configured.
func NewQuoteLock(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*QuoteLock, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("quote save lock disabled, REDIS_ADDR not set")
		return &QuoteLock{}, nil
	}

	ttl := time.Duration(cfg.QuoteLockTTLSeconds) * time.Second
	if ttl <= 0 {
		return nil, fmt.Errorf("quote lock ttl must be positive, got %ds", cfg.QuoteLockTTLSeconds)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable, quote saves will fail until it recovers", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return newQuoteLock(client, ttl), nil
}

func newQuoteLock(client *redis.Client, ttl time.Duration) *QuoteLock {
	if client == nil {
		return &QuoteLock{}
	}
	return &QuoteLock{
		client:  client,
		release: redis.NewScript(releaseQuoteScript),
		ttl:     ttl,
	}
}

func (l *QuoteLock) Enabled() bool {
	return l != nil && l.client != nil
}

// TryLockQuote returns ok=false when another save holds the quote. The
// returned token must be handed back to ReleaseQuote.
func (l *QuoteLock) TryLockQuote(ctx context.Context, quoteID snowflake.ID) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	if quoteID == 0 {
		return "", false, errors.New("quote id is required for the save lock")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, QuoteLockKey(quoteID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("lock quote %s: %w", quoteID, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseQuote is a no-op for an empty token, which is what a disabled lock
// hands out.
func (l *QuoteLock) ReleaseQuote(ctx context.Context, quoteID snowflake.ID, token string) error {
	if !l.Enabled() || token == "" {
		return nil
	}
	if err := l.release.Run(ctx, l.client, []string{QuoteLockKey(quoteID)}, token).Err(); err != nil {
		return fmt.Errorf("release quote %s: %w", quoteID, err)
	}
	return nil
}

func QuoteLockKey(quoteID snowflake.ID) string {
	return fmt.Sprintf(keyQuoteLock, quoteID.String())
}
