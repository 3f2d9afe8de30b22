package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"talkie/internal/service"
)

type userUpsertRequest struct {
	Name  *string `json:"name"`
	Email string  `json:"email"`
}

func handleUpsertUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userUpsertRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := userSvc.Upsert(r.Context(), service.UserUpsertInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleListUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userSvc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := userSvc.GetByID(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleGetData(snapSvc *service.SnapshotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := snapSvc.Full(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
