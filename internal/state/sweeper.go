package state

import (
	"time"

	"github.com/benbjohnson/clock"

	"talkie/internal/domain"
	"talkie/internal/metrics"
)

// Default lifetimes of ephemeral entries.
const (
	DefaultPresenceTTL = 10 * time.Second
	DefaultTypingTTL   = 3 * time.Second
)

// Sweeper drops presence and typing entries whose age reached their TTL.
// It only filters; persisting the result is up to the caller.
type Sweeper struct {
	clock       clock.Clock
	presenceTTL time.Duration
	typingTTL   time.Duration
}

func NewSweeper(clk clock.Clock, presenceTTL, typingTTL time.Duration) *Sweeper {
	if presenceTTL <= 0 {
		presenceTTL = DefaultPresenceTTL
	}
	if typingTTL <= 0 {
		typingTTL = DefaultTypingTTL
	}
	return &Sweeper{clock: clk, presenceTTL: presenceTTL, typingTTL: typingTTL}
}

// SweepPresence removes presence entries with now-timestamp >= presenceTTL
// and returns how many were removed.
func (sw *Sweeper) SweepPresence(s *domain.Snapshot) int {
	now := sw.clock.Now().UnixMilli()
	ttl := sw.presenceTTL.Milliseconds()

	kept := s.OnlineUsers[:0]
	for _, p := range s.OnlineUsers {
		if now-p.Timestamp < ttl {
			kept = append(kept, p)
		}
	}
	removed := len(s.OnlineUsers) - len(kept)
	s.OnlineUsers = kept
	if removed > 0 {
		metrics.SweptEntries.WithLabelValues("presence").Add(float64(removed))
	}
	return removed
}

// SweepTyping removes typing entries with now-timestamp >= typingTTL and
// returns how many were removed.
func (sw *Sweeper) SweepTyping(s *domain.Snapshot) int {
	now := sw.clock.Now().UnixMilli()
	ttl := sw.typingTTL.Milliseconds()

	kept := s.TypingUsers[:0]
	for _, t := range s.TypingUsers {
		if now-t.Timestamp < ttl {
			kept = append(kept, t)
		}
	}
	removed := len(s.TypingUsers) - len(kept)
	s.TypingUsers = kept
	if removed > 0 {
		metrics.SweptEntries.WithLabelValues("typing").Add(float64(removed))
	}
	return removed
}

// Sweep runs both filters.
func (sw *Sweeper) Sweep(s *domain.Snapshot) int {
	return sw.SweepPresence(s) + sw.SweepTyping(s)
}
