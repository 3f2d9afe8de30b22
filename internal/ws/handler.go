package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// PresenceUpdater is the part of the presence service the socket uses.
type PresenceUpdater interface {
	Heartbeat(ctx context.Context, userID string) (bool, error)
}

// TypingUpdater is the part of the typing service the socket uses.
type TypingUpdater interface {
	SetTyping(ctx context.Context, fromUserID, toUserID string, isTyping bool) error
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if _, ok := allowed["*"]; ok {
		return func(r *http.Request) bool { return true }
	}
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			// Non-browser clients send no Origin.
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

type clientEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"userId"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	IsTyping   bool   `json:"isTyping"`
}

// MakeHandler returns an HTTP handler for the /ws change feed. The optional
// userId query parameter tags the connection. Clients receive
// {type:"changed", topic} after every state change and may send:
//   - heartbeat -> refresh presence for userId (or the connection's user)
//   - typing    -> set or clear a typing indicator
func MakeHandler(hub *Hub, presence PresenceUpdater, typing TypingUpdater, allowedOrigins []string) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		connUserID := r.URL.Query().Get("userId")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hub.Register(connUserID, conn)
		defer hub.Unregister(conn)
		_ = hub.Send(conn, Event{Type: "ready"})

		// The request context ends with the handler; socket events use their own.
		ctx := context.Background()
		for {
			var ev clientEvent
			if err := conn.ReadJSON(&ev); err != nil {
				break
			}
			switch ev.Type {
			case "heartbeat":
				userID := ev.UserID
				if userID == "" {
					userID = connUserID
				}
				if _, err := presence.Heartbeat(ctx, userID); err != nil {
					log.Error().Err(err).Str("user_id", userID).Msg("ws: heartbeat")
				}

			case "typing":
				from := ev.FromUserID
				if from == "" {
					from = connUserID
				}
				if err := typing.SetTyping(ctx, from, ev.ToUserID, ev.IsTyping); err != nil {
					log.Error().Err(err).Str("user_id", from).Msg("ws: typing")
				}

			default:
				log.Debug().Str("type", ev.Type).Msg("ws: unknown event type")
				sendError(hub, conn, "unknown event type")
			}
		}
	}
}

func sendError(hub *Hub, conn *websocket.Conn, msg string) {
	_ = hub.Send(conn, map[string]any{
		"type":    "error",
		"message": msg,
	})
}
