package service

import (
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"talkie/internal/domain"
)

// Sweeper removes expired ephemeral entries from a snapshot.
type Sweeper interface {
	SweepPresence(s *domain.Snapshot) int
	SweepTyping(s *domain.Snapshot) int
}

// Deps bundles what every service needs. Clock and NewID default to the
// wall clock and random UUIDs; Notifier defaults to a no-op.
type Deps struct {
	Store    domain.StateStore
	Sweeper  Sweeper
	Clock    clock.Clock
	Notifier domain.Notifier
	NewID    func() string
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

func (d Deps) nowMillis() int64 {
	return d.Clock.Now().UnixMilli()
}

type nopNotifier struct{}

func (nopNotifier) Publish(string) {}
