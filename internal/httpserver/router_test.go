package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkie/internal/config"
	"talkie/internal/domain"
	"talkie/internal/service"
	"talkie/internal/state"
	"talkie/internal/store/jsonfile"
	"talkie/internal/ws"
)

type testApp struct {
	handler http.Handler
	clock   *clock.Mock
	repo    *jsonfile.SnapshotRepo
	sched   *state.Scheduler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.UnixMilli(1_700_000_000_000))

	repo := jsonfile.NewSnapshotRepo(filepath.Join(t.TempDir(), "data.json"))
	loaded := state.LoadWithFallback(repo)
	cache := state.NewCache(loaded.Snapshot)
	sched := state.NewScheduler(cache, repo, clk, state.SchedulerConfig{})
	t.Cleanup(func() { _ = sched.Close() })
	store := state.NewStore(cache, sched)
	sweeper := state.NewSweeper(clk, 0, 0)
	hub := ws.NewHub()

	deps := service.Deps{Store: store, Sweeper: sweeper, Clock: clk, Notifier: hub}
	cfg := &config.Config{
		CORSOrigins:  []string{"*"},
		MaxBodyBytes: 1 << 20,
	}
	h := NewRouter(cfg, Services{
		Users:         service.NewUserService(deps),
		Messages:      service.NewMessageService(deps),
		Presence:      service.NewPresenceService(deps),
		Typing:        service.NewTypingService(deps),
		Conversations: service.NewConversationService(deps),
		Snapshot:      service.NewSnapshotService(deps),
	}, hub)

	return &testApp{handler: h, clock: clk, repo: repo, sched: sched}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestEmptyCollectionsEncodeAsArrays(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/api/users", "/api/messages", "/api/online", "/api/typing"} {
		rec := app.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), path)
	}

	rec := app.do(t, http.MethodGet, "/api/data", "")
	assert.JSONEq(t, `{"users":[],"messages":[],"onlineUsers":[],"typingUsers":[]}`, rec.Body.String())
}

func TestUpsertUserByEmail(t *testing.T) {
	app := newTestApp(t)

	first := decode[domain.User](t, app.do(t, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@example.com"}`))
	second := decode[domain.User](t, app.do(t, http.MethodPost, "/api/users", `{"name":"Annie","email":"ann@example.com"}`))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Annie", second.Name)
	assert.True(t, first.JoinedAt.Equal(second.JoinedAt))

	users := decode[[]domain.User](t, app.do(t, http.MethodGet, "/api/users", ""))
	require.Len(t, users, 1)

	got := decode[domain.User](t, app.do(t, http.MethodGet, "/api/users/"+first.ID, ""))
	assert.Equal(t, "Annie", got.Name)

	rec := app.do(t, http.MethodGet, "/api/users/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{"/api/users", "/api/messages", "/api/messages/read", "/api/online", "/api/typing"} {
		rec := app.do(t, http.MethodPost, path, `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.JSONEq(t, `{"error":"invalid JSON body"}`, rec.Body.String(), path)
	}
}

func TestMessagesAndMarkRead(t *testing.T) {
	app := newTestApp(t)

	msg := decode[domain.Message](t, app.do(t, http.MethodPost, "/api/messages", `{"fromUserId":"a","toUserId":"b","text":"hi"}`))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, domain.MessageText, msg.Type)
	assert.Equal(t, int64(1_700_000_000_000), msg.Timestamp)
	assert.False(t, msg.Read)

	app.do(t, http.MethodPost, "/api/messages", `{"fromUserId":"b","toUserId":"a","text":"yo"}`)

	rec := app.do(t, http.MethodPost, "/api/messages/read", `{"currentUserId":"b","otherUserId":"a"}`)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	msgs := decode[[]domain.Message](t, app.do(t, http.MethodGet, "/api/messages", ""))
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].Read)
	assert.False(t, msgs[1].Read, "reverse direction untouched")

	rec = app.do(t, http.MethodPost, "/api/messages/read", `{"currentUserId":"nobody","otherUserId":"a"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPresenceExpiresAndHeartbeatNeverCreates(t *testing.T) {
	app := newTestApp(t)

	app.do(t, http.MethodPost, "/api/heartbeat/ghost", "")
	assert.Empty(t, decode[[]domain.PresenceEntry](t, app.do(t, http.MethodGet, "/api/online", "")))

	app.do(t, http.MethodPost, "/api/online", `{"userId":"u1","online":true}`)
	app.clock.Add(9 * time.Second)
	rec := app.do(t, http.MethodPost, "/api/heartbeat/u1", "")
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	app.clock.Add(9 * time.Second)
	online := decode[[]domain.PresenceEntry](t, app.do(t, http.MethodGet, "/api/online", ""))
	require.Len(t, online, 1)
	assert.Equal(t, "u1", online[0].UserID)

	app.clock.Add(time.Second)
	assert.Empty(t, decode[[]domain.PresenceEntry](t, app.do(t, http.MethodGet, "/api/online", "")))

	app.do(t, http.MethodPost, "/api/online", `{"userId":"u2","online":true}`)
	app.do(t, http.MethodPost, "/api/online", `{"userId":"u2","online":false}`)
	assert.Empty(t, decode[[]domain.PresenceEntry](t, app.do(t, http.MethodGet, "/api/online", "")))
}

func TestTypingAcceptsBothFieldNames(t *testing.T) {
	app := newTestApp(t)

	app.do(t, http.MethodPost, "/api/typing", `{"userId":"a","targetUserId":"b","isTyping":true}`)
	app.do(t, http.MethodPost, "/api/typing", `{"fromUserId":"b","toUserId":"a","isTyping":true}`)

	entries := decode[[]domain.TypingEntry](t, app.do(t, http.MethodGet, "/api/typing", ""))
	require.Len(t, entries, 2)
	assert.Equal(t, "a_b", entries[0].Key)
	assert.Equal(t, "b_a", entries[1].Key)

	app.do(t, http.MethodPost, "/api/typing", `{"fromUserId":"a","toUserId":"b","isTyping":false}`)
	app.clock.Add(3 * time.Second)
	assert.Empty(t, decode[[]domain.TypingEntry](t, app.do(t, http.MethodGet, "/api/typing", "")))
}

func TestConversationAndChatList(t *testing.T) {
	app := newTestApp(t)

	ann := decode[domain.User](t, app.do(t, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@example.com"}`))
	bob := decode[domain.User](t, app.do(t, http.MethodPost, "/api/users", `{"name":"Bob","email":"bob@example.com"}`))
	cat := decode[domain.User](t, app.do(t, http.MethodPost, "/api/users", `{"name":"Cat","email":"cat@example.com"}`))

	send := func(from, to, text string) {
		body, _ := json.Marshal(map[string]string{"fromUserId": from, "toUserId": to, "text": text})
		app.do(t, http.MethodPost, "/api/messages", string(body))
		app.clock.Add(time.Millisecond)
	}
	send(ann.ID, bob.ID, "hi bob")
	send(bob.ID, ann.ID, "hi ann")
	send(cat.ID, bob.ID, "not for ann")

	conv := decode[[]domain.Message](t, app.do(t, http.MethodGet, "/api/conversations/"+ann.ID+"/"+bob.ID, ""))
	require.Len(t, conv, 2)
	assert.Equal(t, "hi bob", conv[0].Text)
	assert.Equal(t, "hi ann", conv[1].Text)

	app.do(t, http.MethodPost, "/api/online", `{"userId":"`+bob.ID+`","online":true}`)

	rows := decode[[]service.ChatSummary](t, app.do(t, http.MethodGet, "/api/users/"+ann.ID+"/chats", ""))
	require.Len(t, rows, 2)
	assert.Equal(t, bob.ID, rows[0].User.ID)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "hi ann", rows[0].LastMessage.Text)
	assert.Equal(t, 1, rows[0].UnreadCount)
	assert.True(t, rows[0].Online)
	assert.Equal(t, cat.ID, rows[1].User.ID)
	assert.Nil(t, rows[1].LastMessage)
}

func TestWritesAreDebouncedToDisk(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 5; i++ {
		app.do(t, http.MethodPost, "/api/messages", `{"fromUserId":"a","toUserId":"b","text":"burst"}`)
	}
	assert.True(t, app.sched.Pending())

	onDisk, err := app.repo.ReadPrimary()
	require.NoError(t, err)
	assert.Empty(t, onDisk.Messages, "nothing written before the debounce window closes")

	app.clock.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool {
		snap, err := app.repo.ReadPrimary()
		return err == nil && len(snap.Messages) == 5
	}, time.Second, 5*time.Millisecond)
}

func TestCloseFlushesPendingState(t *testing.T) {
	app := newTestApp(t)

	app.do(t, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@example.com"}`)
	require.NoError(t, app.sched.Close())

	snap, err := app.repo.ReadPrimary()
	require.NoError(t, err)
	assert.Len(t, snap.Users, 1)

	backup, err := app.repo.ReadBackup()
	require.NoError(t, err)
	assert.Len(t, backup.Users, 1)
}

func TestRecovererWritesJSON(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
