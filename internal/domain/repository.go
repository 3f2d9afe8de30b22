package domain

import "context"

// SnapshotRepository defines persistence operations for the state snapshot
// and its backup copy. Read methods return ErrNoSnapshot when the file does
// not exist.
type SnapshotRepository interface {
	ReadPrimary() (Snapshot, error)
	ReadBackup() (Snapshot, error)
	WritePrimary(s Snapshot) error
	WriteBackup(s Snapshot) error
}

// StateStore gives services serialized access to the live state.
//
// View runs fn with exclusive access and must not mutate. Update runs fn with
// exclusive access; when fn returns true the change is scheduled for
// persistence. Both return ctx.Err() without running fn if ctx is done.
type StateStore interface {
	View(ctx context.Context, fn func(s *Snapshot)) error
	Update(ctx context.Context, fn func(s *Snapshot) bool) error
}

// Notifier is told which part of the state changed.
type Notifier interface {
	Publish(topic string)
}

// Change topics published after successful mutations.
const (
	TopicUsers    = "users"
	TopicMessages = "messages"
	TopicOnline   = "online"
	TopicTyping   = "typing"
)
