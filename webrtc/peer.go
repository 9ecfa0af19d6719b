// Package webrtc carries game messages over WebRTC data channels as an
// alternative to the websocket transport.
package webrtc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v3"
	"github.com/rs/zerolog/log"

	"snake-landing/models"
)

// ChannelLabel is the data channel the browser client must open.
const ChannelLabel = "game"

var ErrGatheringTimeout = errors.New("ice gathering timed out")

// Handlers connect a peer to the game. OnMessage receives raw inbound
// envelopes; OnClose runs once when the peer goes away.
type Handlers struct {
	OnMessage func(data []byte)
	OnClose   func()
}

type PeerConnection struct {
	PeerConnection *webrtc.PeerConnection
	Player         *models.Player

	mutex       sync.RWMutex
	dataChannel *webrtc.DataChannel
	handlers    Handlers
}

type Manager struct {
	peers  map[string]*PeerConnection
	mutex  sync.RWMutex
	config webrtc.Configuration
}

func NewManager(iceServers []string) *Manager {
	config := webrtc.Configuration{
		ICETransportPolicy: webrtc.ICETransportPolicyAll,
	}
	if len(iceServers) > 0 {
		config.ICEServers = []webrtc.ICEServer{{URLs: iceServers}}
	}
	return &Manager{
		peers:  make(map[string]*PeerConnection),
		config: config,
	}
}

// Accept answers a browser offer for player. The answer is returned once ICE
// gathering has finished, so no trickle signalling is needed.
func (m *Manager) Accept(ctx context.Context, player *models.Player, offerSDP string, h Handlers) (*webrtc.SessionDescription, error) {
	peerConnection, err := webrtc.NewPeerConnection(m.config)
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	peer := &PeerConnection{
		PeerConnection: peerConnection,
		Player:         player,
		handlers:       h,
	}

	peerConnection.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Debug().Str("player", player.ID).Str("state", state.String()).Msg("Peer connection state changed")
		switch state {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateClosed:
			m.RemovePeer(player.ID)
		}
	})

	peerConnection.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != ChannelLabel {
			log.Warn().Str("player", player.ID).Str("label", dc.Label()).Msg("Ignoring unexpected data channel")
			return
		}
		peer.mutex.Lock()
		peer.dataChannel = dc
		peer.mutex.Unlock()

		dc.OnOpen(func() {
			log.Info().Str("player", player.ID).Msg("DataChannel opened")
			go peer.writePump()
		})
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			if peer.handlers.OnMessage != nil {
				peer.handlers.OnMessage(msg.Data)
			}
		})
		dc.OnClose(func() {
			log.Info().Str("player", player.ID).Msg("DataChannel closed")
			m.RemovePeer(player.ID)
		})
		dc.OnError(func(err error) {
			log.Error().Err(err).Str("player", player.ID).Msg("DataChannel error")
		})
	})

	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offerSDP}
	if err := peerConnection.SetRemoteDescription(offer); err != nil {
		peerConnection.Close()
		return nil, fmt.Errorf("set remote description: %w", err)
	}

	answer, err := peerConnection.CreateAnswer(nil)
	if err != nil {
		peerConnection.Close()
		return nil, fmt.Errorf("create answer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(peerConnection)
	if err := peerConnection.SetLocalDescription(answer); err != nil {
		peerConnection.Close()
		return nil, fmt.Errorf("set local description: %w", err)
	}

	select {
	case <-gathered:
	case <-ctx.Done():
		peerConnection.Close()
		return nil, errors.Join(ErrGatheringTimeout, ctx.Err())
	}

	m.mutex.Lock()
	m.peers[player.ID] = peer
	m.mutex.Unlock()

	return peerConnection.LocalDescription(), nil
}

// writePump forwards the player's outbound queue onto the data channel.
func (p *PeerConnection) writePump() {
	p.mutex.RLock()
	dc := p.dataChannel
	p.mutex.RUnlock()

	for {
		select {
		case <-p.Player.Done():
			return
		case message := <-p.Player.Send:
			if dc.ReadyState() != webrtc.DataChannelStateOpen {
				return
			}
			if err := dc.SendText(string(message)); err != nil {
				log.Error().Err(err).Str("player", p.Player.ID).Msg("Error writing to data channel")
				return
			}
		}
	}
}

func (m *Manager) GetPeer(playerID string) (*PeerConnection, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	peer, exists := m.peers[playerID]
	return peer, exists
}

// RemovePeer closes and forgets the peer, then runs its OnClose handler.
// Repeated calls for the same player are no-ops.
func (m *Manager) RemovePeer(playerID string) {
	m.mutex.Lock()
	peer, exists := m.peers[playerID]
	delete(m.peers, playerID)
	m.mutex.Unlock()

	if !exists {
		return
	}
	if err := peer.PeerConnection.Close(); err != nil {
		log.Error().Err(err).Str("player", playerID).Msg("Error closing peer connection")
	}
	if peer.handlers.OnClose != nil {
		peer.handlers.OnClose()
	}
}

func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.peers)
}

// Close tears down every peer.
func (m *Manager) Close() {
	m.mutex.RLock()
	ids := make([]string, 0, len(m.peers))
	for id := range m.peers {
		ids = append(ids, id)
	}
	m.mutex.RUnlock()

	for _, id := range ids {
		m.RemovePeer(id)
	}
}
