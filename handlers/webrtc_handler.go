package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"snake-landing/auth"
	"snake-landing/game"
	"snake-landing/models"
	webrtcManager "snake-landing/webrtc"
)

const (
	maxOfferSize  = 64 << 10
	answerTimeout = 10 * time.Second
)

type WebRTCHandler struct {
	gameManager   *game.Manager
	webrtcManager *webrtcManager.Manager
	issuer        *auth.Issuer
}

func NewWebRTCHandler(gameManager *game.Manager, webrtcManager *webrtcManager.Manager, issuer *auth.Issuer) *WebRTCHandler {
	return &WebRTCHandler{
		gameManager:   gameManager,
		webrtcManager: webrtcManager,
		issuer:        issuer,
	}
}

type offerRequest struct {
	Username string `json:"username"`
	Offer    struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	} `json:"offer"`
}

type sessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type offerResponse struct {
	Player   *models.Player      `json:"player"`
	Token    string              `json:"token"`
	Settings models.GameSettings `json:"settings"`
	Answer   sessionDescription  `json:"answer"`
}

// HandleOffer handles WebRTC offer from client
func (h *WebRTCHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	enableCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxOfferSize))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req offerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Offer.Type != "offer" || req.Offer.SDP == "" {
		http.Error(w, "An SDP offer is required", http.StatusBadRequest)
		return
	}

	id := uuid.New().String()
	username := req.Username
	if username == "" {
		username = "Player_" + id[:8]
	}
	player := models.NewPlayer(id, username, "webrtc")

	if err := h.gameManager.Connect(player); err != nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), answerTimeout)
	defer cancel()
	answer, err := h.webrtcManager.Accept(ctx, player, req.Offer.SDP, webrtcManager.Handlers{
		OnMessage: func(data []byte) {
			h.gameManager.HandleMessage(player, data)
		},
		OnClose: func() {
			h.gameManager.Disconnect(player.ID)
		},
	})
	if err != nil {
		log.Error().Err(err).Str("player", player.ID).Msg("Failed to answer WebRTC offer")
		h.gameManager.Disconnect(player.ID)
		http.Error(w, "Failed to negotiate peer connection", http.StatusInternalServerError)
		return
	}

	token, err := h.issuer.GenerateToken(player.ID, player.Username)
	if err != nil {
		log.Error().Err(err).Str("player", player.ID).Msg("Error generating session token")
	}
	// Queued until the data channel opens.
	h.gameManager.SendConnected(player, token)

	writeJSON(w, http.StatusOK, offerResponse{
		Player:   player,
		Token:    token,
		Settings: h.gameManager.Settings(),
		Answer:   sessionDescription{Type: answer.Type.String(), SDP: answer.SDP},
	})
}

func enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
