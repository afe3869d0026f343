package handlers

import (
	"net/http"

	"agora/internal/notify"

	"github.com/rs/zerolog/log"
)

type realtimeAuthResponse struct {
	PoolID  string `json:"pool_id"`
	Channel string `json:"channel"`
}

// HandleRealtimeAuth registers a live connection for the acting user and
// returns the pool id the client subscribes with
func (h *Handler) HandleRealtimeAuth(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	if _, err := h.forum.Users.Subscriber(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	poolID := h.pool.AddUser(userID)
	log.Debug().Str("user_id", userID).Str("pool_id", poolID).Msg("Realtime channel authorized")

	writeJSON(w, http.StatusOK, realtimeAuthResponse{
		PoolID:  poolID,
		Channel: notify.ChannelName(notify.ChannelKindNotifications, poolID),
	})
}

// HandleNotificationsPop returns and clears the acting user's stashed notifications
func (h *Handler) HandleNotificationsPop(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	items := h.stash.PopAll(userID)
	if items == nil {
		items = []notify.StashItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleNotificationsDrop discards the acting user's stashed notifications
func (h *Handler) HandleNotificationsDrop(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == "" {
		return
	}

	h.stash.Drop(userID)
	w.WriteHeader(http.StatusNoContent)
}
