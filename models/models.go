package models

import (
	"sync"
	"time"

	"snake-landing/constants"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Status is the lifecycle state of a single game.
type Status string

const (
	StatusRunning Status = "running"
	StatusOver    Status = "over"
)

// Snapshot is the read-only view of a game handed to renderers.
// Food is nil only when the board is completely filled by the snake.
type Snapshot struct {
	Snake   []Position          `json:"snake"`
	Food    *Position           `json:"food"`
	Heading constants.Direction `json:"heading"`
	Score   int                 `json:"score"`
	Status  Status              `json:"status"`
	Tick    uint64              `json:"tick"`
}

// Head returns the first snake cell.
func (s Snapshot) Head() Position {
	return s.Snake[0]
}

type Player struct {
	ID        string      `json:"id"`
	Send      chan []byte `json:"-"` // Outbound envelopes, drained by the transport
	Username  string      `json:"username"`
	Transport string      `json:"transport"`
	JoinedAt  time.Time   `json:"joined_at"`

	done      chan struct{}
	closeOnce sync.Once
}

func NewPlayer(id, username, transport string) *Player {
	return &Player{
		ID:        id,
		Send:      make(chan []byte, 256),
		Username:  username,
		Transport: transport,
		JoinedAt:  time.Now(),
		done:      make(chan struct{}),
	}
}

// Close marks the player as gone. Send is never closed; writers watch Done.
func (p *Player) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

func (p *Player) Done() <-chan struct{} {
	return p.done
}

// GameSettings are the fixed per-session constants exposed to clients.
type GameSettings struct {
	GridSize   int `json:"grid_size"`
	TickMillis int `json:"tick_ms"`
	FoodReward int `json:"food_reward"`
}
