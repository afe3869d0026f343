package handlers

import (
	"net/http"

	"agora/internal/forum"
	"agora/internal/models"
)

// HandlePostCreate creates a post for the acting user
func (h *Handler) HandlePostCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req models.NewPost
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.forum.Posts.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandlePostList lists visible posts, newest first
func (h *Handler) HandlePostList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.forum.Posts.ListPublic(r.Context(), queryLimit(r, forum.DefaultListLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandlePostGet returns a single visible post
func (h *Handler) HandlePostGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.forum.Posts.GetPublic(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

type awardRequest struct {
	AwardID string `json:"award_id"`
}

// HandlePostAward grants an award to a post
func (h *Handler) HandlePostAward(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req awardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	grant, err := h.forum.Awards.Grant(r.Context(), userID, r.PathValue("id"), req.AwardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}
