package service

import (
	"context"

	"talkie/internal/domain"
)

type TypingService struct {
	deps Deps
}

func NewTypingService(deps Deps) *TypingService {
	return &TypingService{deps: deps.withDefaults()}
}

// SetTyping upserts or removes the indicator for the ordered pair.
func (s *TypingService) SetTyping(ctx context.Context, fromUserID, toUserID string, isTyping bool) error {
	key := domain.TypingKey(fromUserID, toUserID)
	changed := false
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		i := st.FindTyping(key)
		if isTyping {
			now := s.deps.nowMillis()
			if i >= 0 {
				st.TypingUsers[i].Timestamp = now
			} else {
				st.TypingUsers = append(st.TypingUsers, domain.TypingEntry{
					Key:        key,
					FromUserID: fromUserID,
					ToUserID:   toUserID,
					Timestamp:  now,
				})
			}
			changed = true
			return true
		}
		if i < 0 {
			return false
		}
		st.TypingUsers = append(st.TypingUsers[:i], st.TypingUsers[i+1:]...)
		changed = true
		return true
	})
	if err != nil {
		return err
	}
	if changed {
		s.deps.Notifier.Publish(domain.TopicTyping)
	}
	return nil
}

// List sweeps stale indicators, then returns the live ones.
func (s *TypingService) List(ctx context.Context) ([]domain.TypingEntry, error) {
	var (
		out   []domain.TypingEntry
		swept int
	)
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		swept = s.deps.Sweeper.SweepTyping(st)
		out = append([]domain.TypingEntry{}, st.TypingUsers...)
		return swept > 0
	})
	if err != nil {
		return nil, err
	}
	if swept > 0 {
		s.deps.Notifier.Publish(domain.TopicTyping)
	}
	return out, nil
}
