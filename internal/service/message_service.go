package service

import (
	"context"

	"talkie/internal/domain"
	"talkie/internal/metrics"
)

type MessageService struct {
	deps Deps
}

func NewMessageService(deps Deps) *MessageService {
	return &MessageService{deps: deps.withDefaults()}
}

type MessageCreateInput struct {
	FromUserID string
	ToUserID   string
	Text       string
	Type       domain.MessageType
}

// Send stores a new unread message stamped with the current time.
func (s *MessageService) Send(ctx context.Context, in MessageCreateInput) (domain.Message, error) {
	msgType := in.Type
	if msgType == "" {
		msgType = domain.MessageText
	}

	var msg domain.Message
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		msg = domain.Message{
			ID:         s.deps.NewID(),
			FromUserID: in.FromUserID,
			ToUserID:   in.ToUserID,
			Text:       in.Text,
			Type:       msgType,
			Timestamp:  s.deps.nowMillis(),
			Read:       false,
		}
		st.Messages = append(st.Messages, msg)
		return true
	})
	if err != nil {
		return domain.Message{}, err
	}
	metrics.MessagesSent.Inc()
	s.deps.Notifier.Publish(domain.TopicMessages)
	return msg, nil
}

// List returns every message in insertion order.
func (s *MessageService) List(ctx context.Context) ([]domain.Message, error) {
	var msgs []domain.Message
	err := s.deps.Store.View(ctx, func(st *domain.Snapshot) {
		msgs = append([]domain.Message{}, st.Messages...)
	})
	return msgs, err
}

// MarkRead marks every unread message sent by otherUserID to currentUserID
// as read and returns how many changed. Matching nothing is not an error.
func (s *MessageService) MarkRead(ctx context.Context, currentUserID, otherUserID string) (int, error) {
	marked := 0
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		for i := range st.Messages {
			m := &st.Messages[i]
			if m.ToUserID == currentUserID && m.FromUserID == otherUserID && !m.Read {
				m.Read = true
				marked++
			}
		}
		return marked > 0
	})
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		s.deps.Notifier.Publish(domain.TopicMessages)
	}
	return marked, nil
}
