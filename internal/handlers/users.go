package handlers

import (
	"net/http"
	"time"

	"agora/internal/models"
)

// accountResponse is the owner's view of their account. It never carries the
// password hash.
type accountResponse struct {
	ID        string                   `json:"id"`
	Username  string                   `json:"username"`
	Email     string                   `json:"email"`
	Avatar    string                   `json:"avatar,omitempty"`
	Roles     []models.Role            `json:"roles"`
	Level     int                      `json:"level"`
	Gender    *models.ProfileAttribute `json:"gender,omitempty"`
	Sexuality *models.ProfileAttribute `json:"sexuality,omitempty"`
	Openness  *models.ProfileAttribute `json:"openness,omitempty"`
	Banned    *models.BannedProps      `json:"banned,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

func newAccountResponse(u *models.User) accountResponse {
	return accountResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Roles:     u.Roles,
		Level:     u.Level,
		Gender:    u.Gender,
		Sexuality: u.Sexuality,
		Openness:  u.Openness,
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.forum.Users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(user))
}

// HandleLogin checks credentials. Token issuance happens at the gateway,
// which then forwards the user id on every request.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.forum.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(user))
}

// HandleUserGet returns a public profile
func (h *Handler) HandleUserGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.forum.Users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleProfileUpdate changes the acting user's profile
func (h *Handler) HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req models.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.forum.Users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(user))
}

// HandleLookupList lists one lookup collection
func (h *Handler) HandleLookupList(w http.ResponseWriter, r *http.Request) {
	lookups, err := h.forum.Lookups.List(r.Context(), models.LookupKind(r.PathValue("kind")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lookups)
}

// HandleLookupCreate adds an entry to a lookup collection (admin only)
func (h *Handler) HandleLookupCreate(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	var req models.Lookup
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Kind = models.LookupKind(r.PathValue("kind"))

	lookup, err := h.forum.Lookups.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lookup)
}
