// Package jobs runs the periodic housekeeping tasks next to the HTTP server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"arvista/internal/domain/orders"
	"arvista/internal/infra/cache"
	"arvista/internal/infra/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	expirySpec  = "@every 15m"
	cleanupSpec = "@every 1h"
	limiterIdle = 30 * time.Minute
)

// Cleaner is anything holding per-client state that goes stale.
type Cleaner interface {
	Cleanup(idle time.Duration)
}

type Options struct {
	DB              *gorm.DB
	PendingOrderTTL time.Duration
	Limiters        []Cleaner
}

// Start schedules every job and starts the scheduler. Stop it with Stop(),
// which waits for running jobs.
func Start(opts Options) (*cron.Cron, error) {
	logger := cronLogger{log.With().Str("component", "jobs").Logger()}
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	if opts.DB != nil && opts.PendingOrderTTL > 0 {
		if _, err := c.AddFunc(expirySpec, func() {
			n, err := ExpirePendingOrders(opts.DB, opts.PendingOrderTTL, time.Now())
			if err != nil {
				logger.l.Error().Err(err).Msg("expiring pending orders failed")
				return
			}
			if n > 0 {
				logger.l.Info().Int("orders", n).Msg("expired pending orders")
			}
		}); err != nil {
			return nil, fmt.Errorf("jobs: schedule order expiry: %w", err)
		}
	}

	if len(opts.Limiters) > 0 {
		if _, err := c.AddFunc(cleanupSpec, func() {
			for _, l := range opts.Limiters {
				l.Cleanup(limiterIdle)
			}
		}); err != nil {
			return nil, fmt.Errorf("jobs: schedule limiter cleanup: %w", err)
		}
	}

	c.Start()
	return c, nil
}

// ExpirePendingOrders cancels orders left pending longer than ttl and returns
// their stock to the catalog.
func ExpirePendingOrders(db *gorm.DB, ttl time.Duration, now time.Time) (int, error) {
	n, err := orders.ExpireStale(db, now.Add(-ttl))
	if n > 0 {
		metrics.OrdersExpired.Add(float64(n))
		if cerr := cache.InvalidateCatalog(context.Background()); cerr != nil {
			log.Warn().Err(cerr).Msg("catalog cache invalidation failed")
		}
	}
	return n, err
}

// cronLogger feeds cron's own messages into zerolog.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
