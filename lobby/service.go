// Package lobby tracks the players currently connected to the server,
// whatever transport they arrived on.
package lobby

import (
	"errors"
	"sync"

	"snake-landing/models"
)

var (
	ErrAlreadyConnected = errors.New("player already connected")
	ErrUsernameTaken    = errors.New("username already taken")
)

type Service struct {
	mu      sync.RWMutex
	players map[string]*models.Player
	order   []string // join order
}

func NewService() *Service {
	return &Service{
		players: make(map[string]*models.Player),
		order:   make([]string, 0),
	}
}

// Add registers player. Usernames are unique among connected players.
func (s *Service) Add(player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[player.ID]; exists {
		return ErrAlreadyConnected
	}
	for _, p := range s.players {
		if p.Username == player.Username {
			return ErrUsernameTaken
		}
	}

	s.players[player.ID] = player
	s.order = append(s.order, player.ID)
	return nil
}

// Remove drops playerID and returns the removed player, if any.
func (s *Service) Remove(playerID string) (*models.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, exists := s.players[playerID]
	if !exists {
		return nil, false
	}
	delete(s.players, playerID)
	for i, id := range s.order {
		if id == playerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return player, true
}

func (s *Service) Get(playerID string) (*models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, exists := s.players[playerID]
	return player, exists
}

func (s *Service) Snapshot() []*models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Player, 0, len(s.order))
	for _, id := range s.order {
		if player, exists := s.players[id]; exists {
			result = append(result, player)
		}
	}
	return result
}

// CountByTransport returns the number of connected players per transport.
func (s *Service) CountByTransport() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range s.players {
		counts[p.Transport]++
	}
	return counts
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}
