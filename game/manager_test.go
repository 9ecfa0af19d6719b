package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"snake-landing/config"
	"snake-landing/constants"
	"snake-landing/models"
)

func newTestManager(t *testing.T, tick time.Duration) *Manager {
	t.Helper()
	cfg := config.Default()
	cfg.TickRate = tick
	cfg.Seed = 1
	cfg.JWTSecret = "test"
	gm := NewManager(context.Background(), cfg)
	t.Cleanup(gm.Shutdown)
	return gm
}

func connect(t *testing.T, gm *Manager, id, name string) *models.Player {
	t.Helper()
	p := models.NewPlayer(id, name, "websocket")
	require.NoError(t, gm.Connect(p))
	return p
}

// expect drains the player's outbound queue until a message of msgType shows up.
func expect(t *testing.T, p *models.Player, msgType string) gjson.Result {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case raw := <-p.Send:
			msg := gjson.ParseBytes(raw)
			if msg.Get("type").String() == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func TestManager_StartGameMessage(t *testing.T) {
	gm := newTestManager(t, 5*time.Millisecond)
	p := connect(t, gm, "p1", "alice")

	gm.HandleMessage(p, []byte(`{"type":"start_game"}`))

	msg := expect(t, p, constants.MSG_GAME_START)
	assert.Equal(t, "running", msg.Get("data.status").String())
	assert.Equal(t, int64(10), msg.Get("data.snake.0.x").Int())
	assert.Equal(t, "right", msg.Get("data.heading").String())
	assert.Equal(t, 1, gm.SessionCount())

	expect(t, p, constants.MSG_GAME_UPDATE)
}

func TestManager_MoveAndSwipe(t *testing.T) {
	gm := newTestManager(t, time.Hour)
	p := connect(t, gm, "p1", "alice")
	_, err := gm.StartGame(p)
	require.NoError(t, err)

	require.NoError(t, gm.ChangeDirection("p1", "ArrowUp"))
	require.NoError(t, gm.Swipe("p1", 3, 2))
	assert.ErrorIs(t, gm.ChangeDirection("p1", "sideways"), ErrInvalidDirection)
	assert.ErrorIs(t, gm.ChangeDirection("nobody", "up"), ErrNoActiveGame)
}

func TestManager_ErrorReplies(t *testing.T) {
	gm := newTestManager(t, time.Hour)
	p := connect(t, gm, "p1", "alice")

	gm.HandleMessage(p, []byte(`{"type":"player_move","direction":"up"}`))
	assert.Equal(t, constants.ERR_NO_ACTIVE_GAME, expect(t, p, constants.MSG_ERROR).Get("code").String())

	gm.HandleMessage(p, []byte(`{"type":"dance"}`))
	assert.Equal(t, constants.ERR_UNKNOWN_MESSAGE, expect(t, p, constants.MSG_ERROR).Get("code").String())

	gm.HandleMessage(p, []byte(`{"type":"start_game"}`))
	expect(t, p, constants.MSG_GAME_START)
	gm.HandleMessage(p, []byte(`{"type":"player_move","direction":"north"}`))
	assert.Equal(t, constants.ERR_INVALID_DIRECTION, expect(t, p, constants.MSG_ERROR).Get("code").String())

	gm.HandleMessage(p, []byte(`{not json`))
	select {
	case raw := <-p.Send:
		t.Fatalf("unexpected reply to malformed input: %s", raw)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestManager_GetGameStateAndRestart(t *testing.T) {
	gm := newTestManager(t, time.Millisecond)
	p := connect(t, gm, "p1", "alice")

	gm.HandleMessage(p, []byte(`{"type":"start_game"}`))
	expect(t, p, constants.MSG_GAME_OVER)

	gm.HandleMessage(p, []byte(`{"type":"get_game_state"}`))
	state := expect(t, p, constants.MSG_GAME_STATE)
	assert.Equal(t, "over", state.Get("data.status").String())

	gm.HandleMessage(p, []byte(`{"type":"restart"}`))
	start := expect(t, p, constants.MSG_GAME_START)
	assert.Equal(t, "running", start.Get("data.status").String())
	assert.Equal(t, int64(0), start.Get("data.score").Int())

	snap, err := gm.Snapshot("p1")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Snake)
}

func TestManager_StartGameReplacesSession(t *testing.T) {
	gm := newTestManager(t, time.Hour)
	p := connect(t, gm, "p1", "alice")

	first, err := gm.StartGame(p)
	require.NoError(t, err)
	second, err := gm.StartGame(p)
	require.NoError(t, err)

	<-first.Done()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, gm.SessionCount())
}

func TestManager_DisconnectStopsSession(t *testing.T) {
	gm := newTestManager(t, time.Millisecond)
	p := connect(t, gm, "p1", "alice")
	s, err := gm.StartGame(p)
	require.NoError(t, err)

	gm.Disconnect("p1")

	<-s.Done()
	<-p.Done()
	assert.Equal(t, 0, gm.SessionCount())
	assert.Equal(t, 0, gm.Lobby.Len())
	_, ok := gm.FindPlayer("p1")
	assert.False(t, ok)

	_, err = gm.StartGame(p)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = gm.Snapshot("p1")
	assert.ErrorIs(t, err, ErrNoActiveGame)

	// Disconnecting twice is harmless.
	gm.Disconnect("p1")
}

func TestManager_ConnectRejectsDuplicateUsername(t *testing.T) {
	gm := newTestManager(t, time.Hour)
	connect(t, gm, "p1", "alice")

	err := gm.Connect(models.NewPlayer("p2", "alice", "webrtc"))
	assert.Error(t, err)
}

func TestManager_SendConnected(t *testing.T) {
	gm := newTestManager(t, time.Hour)
	p := connect(t, gm, "p1", "alice")

	gm.SendConnected(p, "tok")
	msg := expect(t, p, constants.MSG_CONNECTED)
	assert.Equal(t, "p1", msg.Get("player.id").String())
	assert.Equal(t, "tok", msg.Get("token").String())
	assert.Equal(t, int64(20), msg.Get("settings.grid_size").Int())
	assert.Equal(t, int64(time.Hour/time.Millisecond), msg.Get("settings.tick_ms").Int())
}
