package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"snake-landing/config"
	"snake-landing/constants"
	"snake-landing/engine"
	"snake-landing/input"
	"snake-landing/lobby"
	"snake-landing/models"
)

var (
	ErrNoActiveGame     = errors.New("no active game")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNotConnected     = errors.New("player not connected")
)

// Manager hosts one game session per connected player.
type Manager struct {
	Lobby *lobby.Service

	cfg      config.Config
	ctx      context.Context
	mu       sync.RWMutex
	sessions map[string]*Session // by player ID
}

// NewManager returns a manager whose sessions all end when ctx is cancelled.
func NewManager(ctx context.Context, cfg config.Config) *Manager {
	return &Manager{
		Lobby:    lobby.NewService(),
		cfg:      cfg,
		ctx:      ctx,
		sessions: make(map[string]*Session),
	}
}

func (gm *Manager) Settings() models.GameSettings {
	return gm.cfg.Settings()
}

// StartGame replaces the player's current session, if any, with a new one.
func (gm *Manager) StartGame(player *models.Player) (*Session, error) {
	gm.mu.Lock()
	if _, ok := gm.Lobby.Get(player.ID); !ok {
		gm.mu.Unlock()
		return nil, ErrNotConnected
	}
	old := gm.sessions[player.ID]
	session := StartSession(gm.ctx, SessionOptions{
		PlayerID: player.ID,
		Engine: engine.Config{
			GridSize:   gm.cfg.GridSize,
			FoodReward: gm.cfg.FoodReward,
		},
		TickRate: gm.cfg.TickRate,
		Rand:     gm.newRand(),
		Publish: func(msgType string, snap models.Snapshot) {
			sendMessage(player, msgType, map[string]any{"data": snap})
		},
	})
	gm.sessions[player.ID] = session
	gm.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return session, nil
}

func (gm *Manager) session(playerID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, ok := gm.sessions[playerID]
	if !ok {
		return nil, ErrNoActiveGame
	}
	return s, nil
}

// ChangeDirection applies a key name (arrow, WASD or heading name).
func (gm *Manager) ChangeDirection(playerID, key string) error {
	dir, ok := input.ParseKey(key)
	if !ok {
		return ErrInvalidDirection
	}
	return gm.setHeading(playerID, dir)
}

// Swipe applies a touch gesture. Gestures too short to count are ignored.
func (gm *Manager) Swipe(playerID string, dx, dy float64) error {
	dir, ok := input.FromSwipe(dx, dy)
	if !ok {
		return nil
	}
	return gm.setHeading(playerID, dir)
}

func (gm *Manager) setHeading(playerID string, dir constants.Direction) error {
	s, err := gm.session(playerID)
	if err != nil {
		return err
	}
	if !s.SetHeading(dir) {
		return ErrNoActiveGame
	}
	return nil
}

func (gm *Manager) Restart(playerID string) error {
	s, err := gm.session(playerID)
	if err != nil {
		return err
	}
	if !s.Restart() {
		return ErrNoActiveGame
	}
	return nil
}

func (gm *Manager) Snapshot(playerID string) (models.Snapshot, error) {
	s, err := gm.session(playerID)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap, ok := s.Snapshot()
	if !ok {
		return models.Snapshot{}, ErrNoActiveGame
	}
	return snap, nil
}

func (gm *Manager) SessionCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// Shutdown stops every session and disconnects every player.
func (gm *Manager) Shutdown() {
	for _, p := range gm.Lobby.Snapshot() {
		gm.Disconnect(p.ID)
	}
	log.Info().Msg("Game manager shut down")
}

func (gm *Manager) newRand() *rand.Rand {
	if gm.cfg.Seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(gm.cfg.Seed, gm.cfg.Seed))
}
