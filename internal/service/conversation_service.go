package service

import (
	"context"
	"sort"

	"talkie/internal/domain"
)

// ConversationService derives per-pair views from the flat message list.
type ConversationService struct {
	deps Deps
}

func NewConversationService(deps Deps) *ConversationService {
	return &ConversationService{deps: deps.withDefaults()}
}

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	User        domain.User     `json:"user"`
	LastMessage *domain.Message `json:"lastMessage"`
	UnreadCount int             `json:"unreadCount"`
	Online      bool            `json:"online"`
	Typing      bool            `json:"typing"`
}

// Conversation returns the messages exchanged between userID and otherUserID
// in both directions, oldest first. Equal timestamps keep insertion order.
func (s *ConversationService) Conversation(ctx context.Context, userID, otherUserID string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := s.deps.Store.View(ctx, func(st *domain.Snapshot) {
		msgs = conversation(st.Messages, userID, otherUserID)
	})
	return msgs, err
}

// ChatList summarizes userID's conversation with every other user. Presence
// and typing are swept first so the flags reflect live entries only.
// Rows are ordered by most recent message; users never talked to follow in
// registration order.
func (s *ConversationService) ChatList(ctx context.Context, userID string) ([]ChatSummary, error) {
	var (
		rows  []ChatSummary
		swept int
	)
	err := s.deps.Store.Update(ctx, func(st *domain.Snapshot) bool {
		swept = s.deps.Sweeper.SweepPresence(st) + s.deps.Sweeper.SweepTyping(st)

		rows = make([]ChatSummary, 0, len(st.Users))
		for _, u := range st.Users {
			if u.ID == userID {
				continue
			}
			row := ChatSummary{
				User:   u,
				Online: st.FindPresence(u.ID) >= 0,
				Typing: st.FindTyping(domain.TypingKey(u.ID, userID)) >= 0,
			}
			if conv := conversation(st.Messages, userID, u.ID); len(conv) > 0 {
				last := conv[len(conv)-1]
				row.LastMessage = &last
			}
			row.UnreadCount = unreadCount(st.Messages, userID, u.ID)
			rows = append(rows, row)
		}
		return swept > 0
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].LastMessage, rows[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Timestamp > b.Timestamp
		}
	})
	return rows, nil
}

// UnreadCount returns how many messages from otherUserID to userID are unread.
func (s *ConversationService) UnreadCount(ctx context.Context, userID, otherUserID string) (int, error) {
	var n int
	err := s.deps.Store.View(ctx, func(st *domain.Snapshot) {
		n = unreadCount(st.Messages, userID, otherUserID)
	})
	return n, err
}

func conversation(all []domain.Message, a, b string) []domain.Message {
	out := []domain.Message{}
	for _, m := range all {
		if m.Between(a, b) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func unreadCount(all []domain.Message, userID, otherUserID string) int {
	n := 0
	for _, m := range all {
		if m.ToUserID == userID && m.FromUserID == otherUserID && !m.Read {
			n++
		}
	}
	return n
}
