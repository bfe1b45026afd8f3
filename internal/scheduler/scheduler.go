// Package scheduler runs periodic quote maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/robobooks/internal/clock"
	obsmetrics "github.com/smallbiznis/robobooks/internal/observability/metrics"
	quotedomain "github.com/smallbiznis/robobooks/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Quotes  quotedomain.Repository
	Config  Config              `optional:"true"`
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Scheduler struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	quotes  quotedomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.Quotes == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:      p.DB,
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		quotes:  p.Quotes,
		metrics: p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) (int64, error)) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	processed, err := fn(ctx)
	if err == nil {
		if processed > 0 {
			log.Info("job finished",
				zap.Int64("processed", processed),
				zap.Duration("elapsed", s.clock.Now().Sub(start)),
			)
		}
		return nil
	}

	// Deadline is a soft timeout; the next tick picks up the rest.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, "expire_quotes", s.ExpireQuotesJob)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ExpireQuotesJob marks open quotes as EXPIRED once the day after their
// expiry date has started (UTC). Quotes stay valid through the expiry date.
func (s *Scheduler) ExpireQuotesJob(ctx context.Context) (int64, error) {
	now := s.clock.Now().UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var total int64
	for {
		var n int64
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			n, err = s.quotes.ExpireDue(ctx, tx, cutoff, now, s.cfg.BatchSize)
			return err
		})
		if err != nil {
			return total, err
		}
		total += n
		s.metrics.RecordQuotesExpired(ctx, n)
		if n < int64(s.cfg.BatchSize) {
			return total, nil
		}
	}
}
