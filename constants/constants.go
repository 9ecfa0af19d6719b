package constants

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Game constants
	GRID_SIZE   = 20
	TICK_RATE   = 200 * time.Millisecond
	FOOD_REWARD = 10

	// Minimum swipe travel, in pixels, before a touch gesture counts as a turn
	MIN_SWIPE_DISTANCE = 30

	// Message types
	MSG_CONNECTED      = "connected"
	MSG_START_GAME     = "start_game"
	MSG_GAME_START     = "game_start"
	MSG_GAME_UPDATE    = "game_update"
	MSG_GAME_OVER      = "game_over"
	MSG_PLAYER_MOVE    = "player_move"
	MSG_SWIPE          = "swipe"
	MSG_RESTART        = "restart"
	MSG_GET_GAME_STATE = "get_game_state"
	MSG_GAME_STATE     = "game_state"
	MSG_ERROR          = "error"

	// Error codes
	ERR_NO_ACTIVE_GAME    = "NO_ACTIVE_GAME"
	ERR_UNKNOWN_MESSAGE   = "UNKNOWN_MESSAGE"
	ERR_INVALID_DIRECTION = "INVALID_DIRECTION"
	ERR_USERNAME_EXISTS   = "USERNAME_EXISTS"
)

type Direction int

const (
	UP Direction = iota
	DOWN
	LEFT
	RIGHT
)

var directionNames = [...]string{"up", "down", "left", "right"}

// Opposite returns the heading pointing the other way along the same axis.
func (d Direction) Opposite() Direction {
	switch d {
	case UP:
		return DOWN
	case DOWN:
		return UP
	case LEFT:
		return RIGHT
	default:
		return LEFT
	}
}

// Delta returns the unit cell offset for one step. Y grows downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case UP:
		return 0, -1
	case DOWN:
		return 0, 1
	case LEFT:
		return -1, 0
	default:
		return 1, 0
	}
}

func (d Direction) Valid() bool {
	return d >= UP && d <= RIGHT
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range directionNames {
		if n == name {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", text)
}
