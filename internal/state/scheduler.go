package state

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"talkie/internal/domain"
	"talkie/internal/metrics"
)

// Default write scheduling parameters.
const (
	DefaultDebounce            = 500 * time.Millisecond
	DefaultMinWriteInterval    = 100 * time.Millisecond
	DefaultMaintenanceInterval = 30 * time.Second
)

// SchedulerConfig tunes the scheduler. Zero values select the defaults.
type SchedulerConfig struct {
	Debounce         time.Duration
	MinWriteInterval time.Duration
}

// Scheduler persists the cache with two independent guards: a trailing-edge
// debounce timer that coalesces bursts of changes, and a floor on the rate of
// real writes. A flush that hits the floor is dropped; the data stays in
// memory until the next trigger.
type Scheduler struct {
	cache    *Cache
	repo     domain.SnapshotRepository
	clock    clock.Clock
	debounce time.Duration
	floor    *rate.Limiter

	mu     sync.Mutex
	timer  *clock.Timer
	gen    uint64
	closed bool

	// writeMu keeps flushes from overlapping on disk.
	writeMu sync.Mutex
}

func NewScheduler(cache *Cache, repo domain.SnapshotRepository, clk clock.Clock, cfg SchedulerConfig) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinWriteInterval <= 0 {
		cfg.MinWriteInterval = DefaultMinWriteInterval
	}
	return &Scheduler{
		cache:    cache,
		repo:     repo,
		clock:    clk,
		debounce: cfg.Debounce,
		floor:    rate.NewLimiter(rate.Every(cfg.MinWriteInterval), 1),
	}
}

// RequestWrite arms or resets the debounce timer.
func (s *Scheduler) RequestWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.debounce, func() { s.fire(gen) })
}

// fire runs when a debounce timer expires. Timers superseded by a later
// RequestWrite carry a stale generation and do nothing.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	if _, err := s.Flush(); err != nil {
		log.Error().Err(err).Msg("debounced flush failed")
	}
}

// Pending reports whether a debounced flush is armed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Flush writes the current state unless the last real write happened less
// than the minimum interval ago. It reports whether a write was attempted.
// After Close it does nothing.
func (s *Scheduler) Flush() (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false, nil
	}

	if !s.floor.AllowN(s.clock.Now(), 1) {
		metrics.FlushesTotal.WithLabelValues(metrics.FlushSkipped).Inc()
		log.Debug().Msg("flush dropped: inside minimum write interval")
		return false, nil
	}
	return true, s.write()
}

// write must be called with writeMu held.
func (s *Scheduler) write() error {
	snap := s.cache.Snapshot()

	if len(snap.Users) > 0 {
		if err := s.repo.WriteBackup(snap); err != nil {
			metrics.BackupFailures.Inc()
			log.Warn().Err(err).Msg("backup write failed, continuing with primary")
		}
	}

	if err := s.repo.WritePrimary(snap); err != nil {
		metrics.FlushesTotal.WithLabelValues(metrics.FlushFailed).Inc()
		return err
	}
	metrics.FlushesTotal.WithLabelValues(metrics.FlushWritten).Inc()
	log.Debug().
		Int("users", len(snap.Users)).
		Int("messages", len(snap.Messages)).
		Msg("snapshot flushed")
	return nil
}

// Run sweeps expired entries and flushes on every tick until ctx is done.
// It guarantees progress even when a steady stream of changes keeps
// resetting the debounce timer.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, sw *Sweeper) {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Maintain(sw)
		}
	}
}

// Maintain performs one sweep-and-flush cycle.
func (s *Scheduler) Maintain(sw *Sweeper) {
	s.cache.Update(func(snap *domain.Snapshot) bool {
		return sw.Sweep(snap) > 0
	})
	if _, err := s.Flush(); err != nil {
		log.Error().Err(err).Msg("periodic flush failed")
	}
}

// Close cancels any pending debounce and writes the state one last time,
// ignoring the rate floor. Later RequestWrite calls are ignored.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write()
}
