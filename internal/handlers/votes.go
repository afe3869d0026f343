package handlers

import (
	"net/http"

	"agora/internal/models"
)

type voteRequest struct {
	Target    models.Target        `json:"target"`
	Direction models.VoteDirection `json:"direction"`
}

type reportRequest struct {
	Target models.Target `json:"target"`
	Reason string        `json:"reason"`
}

// HandleVote casts or switches a vote
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req voteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tally, err := h.forum.Votes.Vote(r.Context(), userID, req.Target, req.Direction)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

// HandleUnvote withdraws a vote
func (h *Handler) HandleUnvote(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req voteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tally, err := h.forum.Votes.Unvote(r.Context(), userID, req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

// HandleReport files a report against a post or comment
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.forum.Reports.Report(r.Context(), userID, req.Target, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
