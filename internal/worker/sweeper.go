// Package worker runs background maintenance next to the API server. The only
// job today is trimming the recommendation log to a retention window.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pruner deletes stored recommendations created before cutoff.
// *store.Postgres and *store.MemoryLog both satisfy it.
type Pruner interface {
	PruneRecommendations(ctx context.Context, cutoff time.Time) (int64, error)
}

// ─── SWEEPER ──────────────────────────────────────────────────────────────────

// SweeperConfig holds tuning parameters for the Sweeper. Zero fields take the
// values from DefaultSweeperConfig.
type SweeperConfig struct {
	// Retention is how long a recommendation is kept. Default: 7 days.
	Retention time.Duration

	// Interval is how often the log is swept. Default: 1 hour.
	Interval time.Duration

	// Timeout bounds a single sweep. Default: 30s.
	Timeout time.Duration
}

// DefaultSweeperConfig returns production defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Retention: 7 * 24 * time.Hour,
		Interval:  time.Hour,
		Timeout:   30 * time.Second,
	}
}

// Sweeper periodically prunes the recommendation log.
type Sweeper struct {
	pruner Pruner
	cfg    SweeperConfig
	logger *slog.Logger
	now    func() time.Time

	wg sync.WaitGroup
}

// NewSweeper constructs a Sweeper. Call Start to begin sweeping.
func NewSweeper(pruner Pruner, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	def := DefaultSweeperConfig()
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Sweeper{pruner: pruner, cfg: cfg, logger: logger, now: time.Now}
}

// Start sweeps once immediately and then on every Interval. It blocks until
// ctx is cancelled:
//
//	go sweeper.Start(ctx)
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("worker: sweeper starting",
		"retention", s.cfg.Retention,
		"interval", s.cfg.Interval,
	)

	s.wg.Add(1)
	go s.loop(ctx)
	s.wg.Wait()

	s.logger.Info("worker: sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single prune and returns the number of records removed.
// Failures are logged; the next tick tries again.
func (s *Sweeper) SweepOnce(ctx context.Context) int64 {
	sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cutoff := s.now().Add(-s.cfg.Retention)
	n, err := s.pruner.PruneRecommendations(sweepCtx, cutoff)
	if err != nil {
		s.logger.Error("worker: sweep failed", "cutoff", cutoff, "error", err)
		return 0
	}
	if n > 0 {
		s.logger.Info("worker: pruned recommendations", "count", n, "cutoff", cutoff)
	} else {
		s.logger.Debug("worker: nothing to prune", "cutoff", cutoff)
	}
	return n
}
