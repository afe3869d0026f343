package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"agora/internal/models"
	"agora/internal/moderation"
)

type moderationRequest struct {
	Reason string `json:"reason"`
}

// decodeOptionalJSON decodes a body that may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		writeError(w, r, err)
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
	return false
}

// HandleModContentAction applies allow, restrict, unrestrict, delete or
// restore to a post or comment
func (h *Handler) HandleModContentAction(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req moderationRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	kind := models.TargetKind(r.PathValue("kind"))
	action := moderation.AuditAction(r.PathValue("action"))

	result, err := h.moderation.ApplyContentAction(r.Context(), userID, kind, action, r.PathValue("id"), req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleModBan bans a user (admin only)
func (h *Handler) HandleModBan(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req moderationRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	user, err := h.moderation.BanUser(r.Context(), userID, moderation.BanPayload{
		UserID: r.PathValue("id"),
		Reason: req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(user))
}

// HandleModUnban lifts a ban (admin only)
func (h *Handler) HandleModUnban(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	user, err := h.moderation.UnbanUser(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(user))
}

// HandleModAuditLog lists recent moderator actions
func (h *Handler) HandleModAuditLog(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	entries, err := h.moderation.ListAuditLog(r.Context(), userID, queryLimit(r, moderation.DefaultAuditLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []moderation.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleModPending returns the review queue
func (h *Handler) HandleModPending(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	queue, err := h.moderation.ListPending(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queue)
}
