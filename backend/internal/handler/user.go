package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/threads/shared/api"
	"github.com/itchan-dev/threads/shared/domain"
	internal_errors "github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/utils"
)

func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userId, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.UpsertProfileRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	profile := domain.UserProfileData{
		Id:       userId,
		Username: body.Username,
		Name:     body.Name,
		Bio:      body.Bio,
		Image:    body.Image,
	}
	user, err := h.user.UpsertProfile(r.Context(), profile, body.InvalidationPath)
	if err != nil && !errors.Is(err, internal_errors.ErrPartialWrite) {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.user.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(user))
}

func (h *Handler) GetUserThreads(w http.ResponseWriter, r *http.Request) {
	result, err := h.user.Threads(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.UserThreadsResponse{User: api.NewUserResponse(result.User), Threads: result.Threads})
}
