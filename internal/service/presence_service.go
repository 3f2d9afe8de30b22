package service

import (
	"context"

	"talkie/internal/domain"
)

// PresenceService tracks who is online. Entries expire through the sweeper
// unless refreshed by heartbeats.
type PresenceService struct {
	deps Deps
}

func NewPresenceService(deps Deps) *PresenceService {
	return &PresenceService{deps: deps.withDefaults()}
}

// SetOnline upserts the user's presence entry when online is true and
// removes it otherwise.
func (s *PresenceService) SetOnline(ctx context.Context, userID string, online bool) error {
	changed := false
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		i := st.FindPresence(userID)
		if online {
			now := s.deps.nowMillis()
			if i >= 0 {
				st.OnlineUsers[i].Timestamp = now
			} else {
				st.OnlineUsers = append(st.OnlineUsers, domain.PresenceEntry{UserID: userID, Timestamp: now})
			}
			changed = true
			return true
		}
		if i < 0 {
			return false
		}
		st.OnlineUsers = append(st.OnlineUsers[:i], st.OnlineUsers[i+1:]...)
		changed = true
		return true
	})
	if err != nil {
		return err
	}
	if changed {
		s.deps.Notifier.Publish(domain.TopicOnline)
	}
	return nil
}

// Heartbeat refreshes an existing presence entry. It never creates one, so a
// user who never announced itself online stays offline. It reports whether
// an entry was refreshed.
func (s *PresenceService) Heartbeat(ctx context.Context, userID string) (bool, error) {
	refreshed := false
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		if i := st.FindPresence(userID); i >= 0 {
			st.OnlineUsers[i].Timestamp = s.deps.nowMillis()
			refreshed = true
		}
		return refreshed
	})
	return refreshed, err
}

// List sweeps stale entries, then returns the live ones.
func (s *PresenceService) List(ctx context.Context) ([]domain.PresenceEntry, error) {
	var (
		out   []domain.PresenceEntry
		swept int
	)
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		swept = s.deps.Sweeper.SweepPresence(st)
		out = append([]domain.PresenceEntry{}, st.OnlineUsers...)
		return swept > 0
	})
	if err != nil {
		return nil, err
	}
	if swept > 0 {
		s.deps.Notifier.Publish(domain.TopicOnline)
	}
	return out, nil
}
