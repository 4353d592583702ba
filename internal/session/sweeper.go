package session

import (
	"context"
	"log/slog"
	"time"
)

// SweeperConfig holds sweeper configuration
type SweeperConfig struct {
	// Interval is how often idle sessions are removed
	Interval time.Duration
}

// Sweeper periodically removes idle sessions from a Store.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger

	// OnSweep, if set, is called with the store size after each pass.
	OnSweep func(active int)
}

// NewSweeper creates a sweeper for store.
func NewSweeper(store *Store, config SweeperConfig, logger *slog.Logger) *Sweeper {
	if config.Interval == 0 {
		config.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		interval: config.Interval,
		logger:   logger,
	}
}

// Start sweeps on every tick until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("session sweeper starting", "interval", s.interval, "ttl", s.store.TTL())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	removed := s.store.Sweep()
	active := s.store.Len()
	if removed > 0 {
		s.logger.Debug("expired sessions removed", "removed", removed, "active", active)
	}
	if s.OnSweep != nil {
		s.OnSweep(active)
	}
}
