package handlers

import (
	"net/http"

	"agora/internal/models"
)

// HandleCommentCreate replies to a post or comment
func (h *Handler) HandleCommentCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req models.NewComment
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.forum.Comments.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleCommentList returns the visible reply tree of a post
func (h *Handler) HandleCommentList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.forum.Comments.ListForPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCommentPin pins a comment on the acting user's post
func (h *Handler) HandleCommentPin(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	comment, err := h.forum.Comments.Pin(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleCommentUnpin unpins a comment
func (h *Handler) HandleCommentUnpin(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	comment, err := h.forum.Comments.Unpin(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
