package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"talkie/internal/config"
	"talkie/internal/logging"
	"talkie/internal/metrics"
	"talkie/internal/service"
	"talkie/internal/ws"
)

// Services groups everything the handlers call into.
type Services struct {
	Users         *service.UserService
	Messages      *service.MessageService
	Presence      *service.PresenceService
	Typing        *service.TypingService
	Conversations *service.ConversationService
	Snapshot      *service.SnapshotService
}

// NewRouter constructs the main HTTP router and wires routes and middleware.
func NewRouter(cfg *config.Config, svc Services, hub *ws.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(recoverer)
	r.Use(middleware.RequestSize(cfg.MaxBodyBytes))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", handleGetData(svc.Snapshot))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handleListUsers(svc.Users))
			r.Post("/", handleUpsertUser(svc.Users))
			r.Get("/{userId}", handleGetUser(svc.Users))
			r.Get("/{userId}/chats", handleChatList(svc.Conversations))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", handleListMessages(svc.Messages))
			r.Post("/", handleSendMessage(svc.Messages))
			r.Post("/read", handleMarkRead(svc.Messages))
		})
		r.Get("/conversations/{userId}/{otherUserId}", handleConversation(svc.Conversations))

		r.Get("/online", handleListOnline(svc.Presence))
		r.Post("/online", handleSetOnline(svc.Presence))
		r.Post("/heartbeat/{userId}", handleHeartbeat(svc.Presence))

		r.Get("/typing", handleListTyping(svc.Typing))
		r.Post("/typing", handleSetTyping(svc.Typing))
	})

	r.Get("/ws", ws.MakeHandler(hub, svc.Presence, svc.Typing, cfg.CORSOrigins))

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("encoding response failed")
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var success = map[string]bool{"success": true}

// decodeJSON reads the request body into dst. It writes the 400 response
// itself and reports false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// recoverer turns a handler panic into a 500 JSON response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("handler panicked")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
