package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var retentionCronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Sweeper deletes conversation records older than MaxAge on a cron schedule.
// A zero MaxAge disables the sweep entirely.
type Sweeper struct {
	store    Store
	schedule cron.Schedule
	maxAge   time.Duration
	logger   *slog.Logger
}

func NewSweeper(store Store, cronExpr string, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAge <= 0 {
		return &Sweeper{store: store, logger: logger}, nil
	}

	expr := strings.Join(strings.Fields(cronExpr), " ")
	if expr == "" {
		expr = "0 3 * * *"
	}
	schedule, err := retentionCronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse retention schedule: %w", err)
	}

	return &Sweeper{
		store:    store,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is cancelled, pruning at every scheduled tick.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.schedule == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.sweep(ctx, time.Now())
	}
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	cutoff := now.UTC().Add(-s.maxAge)
	removed, err := s.store.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("retention sweep removed records", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	}
}
