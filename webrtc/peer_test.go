package webrtc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-landing/models"
)

func TestAccept_RejectsGarbageOffer(t *testing.T) {
	m := NewManager(nil)
	player := models.NewPlayer("p1", "alice", "webrtc")

	_, err := m.Accept(context.Background(), player, "not an sdp", Handlers{})
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
	_, ok := m.GetPeer("p1")
	assert.False(t, ok)
}

func TestRemovePeer_UnknownIsNoop(t *testing.T) {
	m := NewManager([]string{"stun:stun.example.org:3478"})
	m.RemovePeer("nobody")
	m.Close()
	assert.Equal(t, 0, m.Len())
}

// Needs working host ICE candidates, so it only runs when asked for.
func TestAccept_LoopbackDataChannel(t *testing.T) {
	if os.Getenv("SNAKE_WEBRTC_E2E") == "" {
		t.Skip("set SNAKE_WEBRTC_E2E=1 to run the loopback data channel test")
	}

	m := NewManager(nil)
	player := models.NewPlayer("p1", "alice", "webrtc")
	received := make(chan []byte, 1)
	closed := make(chan struct{})

	client, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	defer client.Close()

	dc, err := client.CreateDataChannel(ChannelLabel, nil)
	require.NoError(t, err)
	opened := make(chan struct{})
	fromServer := make(chan string, 1)
	dc.OnOpen(func() { close(opened) })
	dc.OnMessage(func(msg webrtc.DataChannelMessage) { fromServer <- string(msg.Data) })

	offer, err := client.CreateOffer(nil)
	require.NoError(t, err)
	gathered := webrtc.GatheringCompletePromise(client)
	require.NoError(t, client.SetLocalDescription(offer))
	<-gathered

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	answer, err := m.Accept(ctx, player, client.LocalDescription().SDP, Handlers{
		OnMessage: func(data []byte) { received <- data },
		OnClose:   func() { close(closed) },
	})
	require.NoError(t, err)
	require.NoError(t, client.SetRemoteDescription(*answer))

	select {
	case <-opened:
	case <-ctx.Done():
		t.Fatal("data channel never opened")
	}

	require.NoError(t, dc.SendText(`{"type":"start_game"}`))
	select {
	case data := <-received:
		assert.JSONEq(t, `{"type":"start_game"}`, string(data))
	case <-ctx.Done():
		t.Fatal("server never received the message")
	}

	player.Send <- []byte(`{"type":"game_start"}`)
	select {
	case msg := <-fromServer:
		assert.JSONEq(t, `{"type":"game_start"}`, msg)
	case <-ctx.Done():
		t.Fatal("client never received the message")
	}

	m.RemovePeer("p1")
	<-closed
	assert.Equal(t, 0, m.Len())
}
