package domain

import (
	"encoding/json"
	"time"
)

// MessageType distinguishes plain text from embedded image payloads.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

// User represents a registered chat participant. Email is the unique key.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Message represents a single chat message. Only Read ever changes after
// creation, and only from false to true.
type Message struct {
	ID         string      `json:"id"`
	FromUserID string      `json:"fromUserId"`
	ToUserID   string      `json:"toUserId"`
	Text       string      `json:"text"` // plain text or image data URL
	Type       MessageType `json:"type"`
	Timestamp  int64       `json:"timestamp"` // unix ms
	Read       bool        `json:"read"`
}

// Between reports whether the message belongs to the conversation of a and b,
// in either direction.
func (m Message) Between(a, b string) bool {
	return (m.FromUserID == a && m.ToUserID == b) || (m.FromUserID == b && m.ToUserID == a)
}

// PresenceEntry marks the last instant a user was seen online.
type PresenceEntry struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"` // unix ms
}

// TypingEntry marks that FromUserID is composing a message to ToUserID.
type TypingEntry struct {
	Key        string `json:"key"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Timestamp  int64  `json:"timestamp"` // unix ms
}

// TypingKey builds the key identifying an ordered (from, to) pair.
func TypingKey(fromUserID, toUserID string) string {
	return fromUserID + "_" + toUserID
}

// UnmarshalJSON accepts the older userId/targetUserId field names that early
// data files were written with.
func (t *TypingEntry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Key          string `json:"key"`
		FromUserID   string `json:"fromUserId"`
		ToUserID     string `json:"toUserId"`
		UserID       string `json:"userId"`
		TargetUserID string `json:"targetUserId"`
		Timestamp    int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.FromUserID = raw.FromUserID
	if t.FromUserID == "" {
		t.FromUserID = raw.UserID
	}
	t.ToUserID = raw.ToUserID
	if t.ToUserID == "" {
		t.ToUserID = raw.TargetUserID
	}
	t.Key = raw.Key
	if t.Key == "" {
		t.Key = TypingKey(t.FromUserID, t.ToUserID)
	}
	t.Timestamp = raw.Timestamp
	return nil
}

// Snapshot is the whole application state, both in memory and on disk.
type Snapshot struct {
	Users       []User          `json:"users"`
	Messages    []Message       `json:"messages"`
	OnlineUsers []PresenceEntry `json:"onlineUsers"`
	TypingUsers []TypingEntry   `json:"typingUsers"`
}

// NewSnapshot returns an empty snapshot with non-nil collections.
func NewSnapshot() Snapshot {
	return Snapshot{
		Users:       []User{},
		Messages:    []Message{},
		OnlineUsers: []PresenceEntry{},
		TypingUsers: []TypingEntry{},
	}
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (s *Snapshot) Normalize() {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	if s.OnlineUsers == nil {
		s.OnlineUsers = []PresenceEntry{}
	}
	if s.TypingUsers == nil {
		s.TypingUsers = []TypingEntry{}
	}
}

// Clone returns a deep copy. All entity fields are values, so copying the
// slices is enough.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Users:       append([]User{}, s.Users...),
		Messages:    append([]Message{}, s.Messages...),
		OnlineUsers: append([]PresenceEntry{}, s.OnlineUsers...),
		TypingUsers: append([]TypingEntry{}, s.TypingUsers...),
	}
}

// FindUserByEmail returns the index of the user with the given email, or -1.
func (s *Snapshot) FindUserByEmail(email string) int {
	for i := range s.Users {
		if s.Users[i].Email == email {
			return i
		}
	}
	return -1
}

// FindUserByID returns the index of the user with the given id, or -1.
func (s *Snapshot) FindUserByID(id string) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindPresence returns the index of the presence entry for userID, or -1.
func (s *Snapshot) FindPresence(userID string) int {
	for i := range s.OnlineUsers {
		if s.OnlineUsers[i].UserID == userID {
			return i
		}
	}
	return -1
}

// FindTyping returns the index of the typing entry with the given key, or -1.
func (s *Snapshot) FindTyping(key string) int {
	for i := range s.TypingUsers {
		if s.TypingUsers[i].Key == key {
			return i
		}
	}
	return -1
}
