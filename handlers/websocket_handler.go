package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"snake-landing/auth"
	"snake-landing/constants"
	"snake-landing/game"
	"snake-landing/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // The page and the socket may be served from different hosts
	},
}

type WebSocketHandler struct {
	gameManager *game.Manager
	issuer      *auth.Issuer
}

func NewWebSocketHandler(gameManager *game.Manager, issuer *auth.Issuer) *WebSocketHandler {
	return &WebSocketHandler{
		gameManager: gameManager,
		issuer:      issuer,
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	id := uuid.New().String()
	player := models.NewPlayer(id, requestedUsername(r, id), "websocket")

	if err := h.gameManager.Connect(player); err != nil {
		log.Info().Err(err).Str("username", player.Username).Msg("Rejecting websocket connection")
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(map[string]any{
			"type":    constants.MSG_ERROR,
			"code":    constants.ERR_USERNAME_EXISTS,
			"message": "Username already taken. Please choose a different username.",
		})
		conn.Close()
		return
	}

	token, err := h.issuer.GenerateToken(player.ID, player.Username)
	if err != nil {
		log.Error().Err(err).Str("player", player.ID).Msg("Error generating session token")
	}
	h.gameManager.SendConnected(player, token)

	go h.writePump(player, conn)
	h.readPump(player, conn)
}

func (h *WebSocketHandler) readPump(player *models.Player, conn *websocket.Conn) {
	defer func() {
		h.gameManager.Disconnect(player.ID)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("player", player.ID).Msg("WebSocket error")
			}
			return
		}

		h.gameManager.HandleMessage(player, message)
	}
}

// writePump batches queued envelopes into one frame, separated by newlines.
func (h *WebSocketHandler) writePump(player *models.Player, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-player.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case message := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(player.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-player.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// requestedUsername reads the username from the query or X-Username header,
// falling back to a generated one.
func requestedUsername(r *http.Request, playerID string) string {
	username := r.URL.Query().Get("username")
	if username == "" {
		username = r.Header.Get("X-Username")
	}
	if username == "" {
		username = "Player_" + playerID[:8]
	}
	return username
}
