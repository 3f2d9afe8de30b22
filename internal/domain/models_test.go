package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkie/internal/domain"
)

func TestTypingEntryLegacyFields(t *testing.T) {
	var e domain.TypingEntry
	err := json.Unmarshal([]byte(`{"key":"a_b","userId":"a","targetUserId":"b","timestamp":42}`), &e)
	require.NoError(t, err)

	assert.Equal(t, "a", e.FromUserID)
	assert.Equal(t, "b", e.ToUserID)
	assert.Equal(t, "a_b", e.Key)
	assert.Equal(t, int64(42), e.Timestamp)
}

func TestTypingEntryDerivesMissingKey(t *testing.T) {
	var e domain.TypingEntry
	require.NoError(t, json.Unmarshal([]byte(`{"fromUserId":"x","toUserId":"y"}`), &e))
	assert.Equal(t, domain.TypingKey("x", "y"), e.Key)
}

func TestSnapshotNormalizeEncodesEmptyArrays(t *testing.T) {
	var s domain.Snapshot
	s.Normalize()

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":[],"messages":[],"onlineUsers":[],"typingUsers":[]}`, string(b))
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := domain.NewSnapshot()
	s.Messages = append(s.Messages, domain.Message{ID: "m1"})

	c := s.Clone()
	c.Messages[0].Read = true

	assert.False(t, s.Messages[0].Read)
}

func TestMessageBetween(t *testing.T) {
	m := domain.Message{FromUserID: "a", ToUserID: "b"}
	assert.True(t, m.Between("a", "b"))
	assert.True(t, m.Between("b", "a"))
	assert.False(t, m.Between("a", "c"))
}
