package service

import (
	"context"

	"talkie/internal/domain"
)

// SnapshotService serves the whole state in one response.
type SnapshotService struct {
	deps Deps
}

func NewSnapshotService(deps Deps) *SnapshotService {
	return &SnapshotService{deps: deps.withDefaults()}
}

// Full sweeps presence and typing, then returns a copy of everything.
func (s *SnapshotService) Full(ctx context.Context) (domain.Snapshot, error) {
	var (
		out                   domain.Snapshot
		sweptOnline, sweptTyp int
	)
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		sweptOnline = s.deps.Sweeper.SweepPresence(st)
		sweptTyp = s.deps.Sweeper.SweepTyping(st)
		out = st.Clone()
		return sweptOnline+sweptTyp > 0
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	if sweptOnline > 0 {
		s.deps.Notifier.Publish(domain.TopicOnline)
	}
	if sweptTyp > 0 {
		s.deps.Notifier.Publish(domain.TopicTyping)
	}
	return out, nil
}
