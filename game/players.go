package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"snake-landing/constants"
	"snake-landing/models"
)

// Connect registers a newly connected player.
func (gm *Manager) Connect(player *models.Player) error {
	if err := gm.Lobby.Add(player); err != nil {
		return err
	}
	log.Info().
		Str("player", player.ID).
		Str("username", player.Username).
		Str("transport", player.Transport).
		Int("connected", gm.Lobby.Len()).
		Msg("Player connected")
	return nil
}

// Disconnect stops the player's session and releases the player. After it
// returns nothing more is queued on the player's Send channel by a session.
func (gm *Manager) Disconnect(playerID string) {
	gm.mu.Lock()
	player, ok := gm.Lobby.Remove(playerID)
	session := gm.sessions[playerID]
	delete(gm.sessions, playerID)
	gm.mu.Unlock()

	if session != nil {
		session.Stop()
	}
	if !ok {
		return
	}
	player.Close()
	log.Info().
		Str("player", player.ID).
		Str("username", player.Username).
		Int("connected", gm.Lobby.Len()).
		Msg("Player disconnected")
}

// FindPlayer looks up a connected player.
func (gm *Manager) FindPlayer(playerID string) (*models.Player, bool) {
	return gm.Lobby.Get(playerID)
}

// SendConnected greets a player with its identity, session token and the
// board settings.
func (gm *Manager) SendConnected(player *models.Player, token string) {
	sendMessage(player, constants.MSG_CONNECTED, map[string]any{
		"player":   player,
		"token":    token,
		"settings": gm.Settings(),
	})
}

func sendError(player *models.Player, code, message string) {
	sendMessage(player, constants.MSG_ERROR, map[string]any{
		"code":    code,
		"message": message,
	})
}

func sendMessage(player *models.Player, msgType string, data map[string]any) {
	message := map[string]any{
		"type": msgType,
	}
	for k, v := range data {
		message[k] = v
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("Error marshaling message")
		return
	}

	select {
	case <-player.Done():
	case player.Send <- jsonData:
	default:
		log.Warn().Str("player", player.ID).Str("type", msgType).Msg("Send buffer full, dropping message")
	}
}
