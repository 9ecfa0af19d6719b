package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"snake-landing/auth"
	"snake-landing/game"
)

// APIHandler serves the small read-only JSON API next to the game transports.
type APIHandler struct {
	gameManager *game.Manager
}

func NewAPIHandler(gameManager *game.Manager) *APIHandler {
	return &APIHandler{gameManager: gameManager}
}

// HandleConfig returns the board settings.
func (h *APIHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gameManager.Settings())
}

// HandleState returns the caller's current snapshot. It expects to run behind
// auth.Middleware.
func (h *APIHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	player, ok := auth.PlayerFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	snap, err := h.gameManager.Snapshot(player.ID)
	if errors.Is(err, game.ErrNoActiveGame) {
		http.Error(w, "No active game", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", player.ID).Msg("Error reading game state")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"players":    h.gameManager.Lobby.Len(),
		"sessions":   h.gameManager.SessionCount(),
		"transports": h.gameManager.Lobby.CountByTransport(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
