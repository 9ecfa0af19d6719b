package game

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"snake-landing/constants"
	"snake-landing/models"
)

// HandleMessage processes one inbound JSON envelope from any transport.
func (gm *Manager) HandleMessage(player *models.Player, raw []byte) {
	if !gjson.ValidBytes(raw) {
		log.Warn().Str("player", player.ID).Msg("Dropping malformed message")
		return
	}
	msg := gjson.ParseBytes(raw)
	msgType := msg.Get("type").String()

	var err error
	switch msgType {
	case constants.MSG_START_GAME:
		_, err = gm.StartGame(player)
	case constants.MSG_PLAYER_MOVE:
		err = gm.ChangeDirection(player.ID, msg.Get("direction").String())
	case constants.MSG_SWIPE:
		err = gm.Swipe(player.ID, msg.Get("dx").Float(), msg.Get("dy").Float())
	case constants.MSG_RESTART:
		err = gm.Restart(player.ID)
	case constants.MSG_GET_GAME_STATE:
		var snap models.Snapshot
		if snap, err = gm.Snapshot(player.ID); err == nil {
			sendMessage(player, constants.MSG_GAME_STATE, map[string]any{"data": snap})
		}
	default:
		log.Debug().Str("player", player.ID).Str("type", msgType).Msg("Unknown message type")
		sendError(player, constants.ERR_UNKNOWN_MESSAGE, "Unknown message type: "+msgType)
		return
	}

	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ErrInvalidDirection):
		sendError(player, constants.ERR_INVALID_DIRECTION, "Unrecognized direction")
	case errors.Is(err, ErrNoActiveGame):
		sendError(player, constants.ERR_NO_ACTIVE_GAME, "Start a game first")
	default:
		log.Error().Err(err).Str("player", player.ID).Str("type", msgType).Msg("Error handling message")
	}
}
