package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talkie/internal/service"
)

type setOnlineRequest struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// typingRequest accepts both the current and the older field names.
type typingRequest struct {
	UserID       string `json:"userId"`
	FromUserID   string `json:"fromUserId"`
	TargetUserID string `json:"targetUserId"`
	ToUserID     string `json:"toUserId"`
	IsTyping     bool   `json:"isTyping"`
}

func (r typingRequest) from() string {
	if r.FromUserID != "" {
		return r.FromUserID
	}
	return r.UserID
}

func (r typingRequest) to() string {
	if r.ToUserID != "" {
		return r.ToUserID
	}
	return r.TargetUserID
}

func handleSetOnline(presSvc *service.PresenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setOnlineRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := presSvc.SetOnline(r.Context(), req.UserID, req.Online); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, success)
	}
}

func handleListOnline(presSvc *service.PresenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := presSvc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// handleHeartbeat answers success whether or not an entry was refreshed.
func handleHeartbeat(presSvc *service.PresenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := presSvc.Heartbeat(r.Context(), chi.URLParam(r, "userId")); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, success)
	}
}

func handleSetTyping(typSvc *service.TypingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req typingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := typSvc.SetTyping(r.Context(), req.from(), req.to(), req.IsTyping); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, success)
	}
}

func handleListTyping(typSvc *service.TypingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := typSvc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
