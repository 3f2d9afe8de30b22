package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talkie/internal/service"
)

func handleConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := convSvc.Conversation(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "otherUserId"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func handleChatList(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := convSvc.ChatList(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}
