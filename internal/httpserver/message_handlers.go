package httpserver

import (
	"net/http"

	"talkie/internal/domain"
	"talkie/internal/service"
)

type messageCreateRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Text       string `json:"text"`
	Type       string `json:"type"`
}

type markReadRequest struct {
	CurrentUserID string `json:"currentUserId"`
	OtherUserID   string `json:"otherUserId"`
}

func handleSendMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		msg, err := msgSvc.Send(r.Context(), service.MessageCreateInput{
			FromUserID: req.FromUserID,
			ToUserID:   req.ToUserID,
			Text:       req.Text,
			Type:       domain.MessageType(req.Type),
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

func handleListMessages(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := msgSvc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func handleMarkRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markReadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := msgSvc.MarkRead(r.Context(), req.CurrentUserID, req.OtherUserID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, success)
	}
}
