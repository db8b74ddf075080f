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

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	userId, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creation := domain.ThreadCreationData{Text: body.Text, AuthorId: userId}
	id, err := h.thread.CreateRoot(r.Context(), creation, body.InvalidationPath)
	h.writeCreated(w, id, body.InvalidationPath, err)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userId, ok := requireUser(w, r)
	if !ok {
		return
	}
	parentId := chi.URLParam(r, "threadId")

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creation := domain.ThreadCreationData{Text: body.Text, AuthorId: userId, ParentId: &parentId}
	id, err := h.thread.CreateComment(r.Context(), creation, body.InvalidationPath)
	h.writeCreated(w, id, body.InvalidationPath, err)
}

// writeCreated answers a creation. A failed invalidation still reports the
// committed id, without a path to revalidate.
func (h *Handler) writeCreated(w http.ResponseWriter, id domain.ThreadId, path string, err error) {
	if err != nil {
		if !errors.Is(err, internal_errors.ErrPartialWrite) {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		path = ""
	}
	writeJSONStatus(w, http.StatusCreated, api.CreateThreadResponse{Id: id, Revalidate: path})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := h.thread.Get(r.Context(), chi.URLParam(r, "threadId"))
	h.writeThread(w, thread, err)
}

func (h *Handler) ExpandThread(w http.ResponseWriter, r *http.Request) {
	depth, err := queryInt(r, "depth", h.cfg.Public.PopulateDepth)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	thread, err := h.thread.Expand(r.Context(), chi.URLParam(r, "threadId"), depth)
	h.writeThread(w, thread, err)
}

func (h *Handler) writeThread(w http.ResponseWriter, thread *domain.Thread, err error) {
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if thread == nil {
		http.Error(w, "Thread not found", http.StatusNotFound)
		return
	}
	writeJSON(w, api.ThreadResponse{Thread: thread})
}

func (h *Handler) GetThreadsPage(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", h.cfg.Public.ThreadsPerPage)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.feed.Page(r.Context(), page, pageSize)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.ThreadsPageResponse{ThreadsPage: *result})
}
