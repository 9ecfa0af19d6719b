package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"snake-landing/constants"
	"snake-landing/engine"
	"snake-landing/models"
)

// Publisher receives every snapshot a session emits, tagged with its message
// type. It is called from the session goroutine and must not block.
type Publisher func(msgType string, snap models.Snapshot)

type commandKind int

const (
	cmdHeading commandKind = iota
	cmdRestart
	cmdSnapshot
)

type command struct {
	kind  commandKind
	dir   constants.Direction
	reply chan models.Snapshot
}

// Session runs one game. Its goroutine is the only code that touches the
// engine; everything else talks to it through commands.
type Session struct {
	ID       string
	PlayerID string

	eng      *engine.Engine
	tickRate time.Duration
	publish  Publisher
	logger   zerolog.Logger

	cmds     chan command
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

type SessionOptions struct {
	PlayerID string
	Engine   engine.Config
	TickRate time.Duration
	Rand     *rand.Rand // nil seeds from the clock
	Publish  Publisher
}

// StartSession creates a session and starts its ticker immediately. The
// session ends when ctx is cancelled or Stop is called.
func StartSession(ctx context.Context, opts SessionOptions) *Session {
	if opts.TickRate <= 0 {
		opts.TickRate = constants.TICK_RATE
	}
	if opts.Publish == nil {
		opts.Publish = func(string, models.Snapshot) {}
	}

	id := uuid.New().String()
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:       id,
		PlayerID: opts.PlayerID,
		eng:      engine.New(opts.Engine, opts.Rand),
		tickRate: opts.TickRate,
		publish:  opts.Publish,
		logger:   log.With().Str("session", id).Str("player", opts.PlayerID).Logger(),
		cmds:     make(chan command),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go s.run(ctx)
	return s
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()
	ticks := ticker.C

	s.logger.Info().Dur("tick_rate", s.tickRate).Msg("Game started")
	s.publish(constants.MSG_GAME_START, s.eng.Snapshot())

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("Session stopped")
			return

		case cmd := <-s.cmds:
			switch cmd.kind {
			case cmdHeading:
				s.eng.SetHeading(cmd.dir)
			case cmdRestart:
				s.eng.Reset()
				ticker.Stop()
				select {
				case <-ticker.C:
				default:
				}
				ticker.Reset(s.tickRate)
				ticks = ticker.C
				s.logger.Info().Msg("Game restarted")
				s.publish(constants.MSG_GAME_START, s.eng.Snapshot())
			case cmdSnapshot:
				cmd.reply <- s.eng.Snapshot()
			}

		case <-ticks:
			ev := s.eng.Tick()
			if ev == engine.EventNone {
				continue
			}
			snap := s.eng.Snapshot()
			if ev.GameOver() {
				// No ticks until the player restarts.
				ticker.Stop()
				ticks = nil
				s.logger.Info().Str("cause", ev.String()).Int("score", snap.Score).Int("length", len(snap.Snake)).Msg("Game over")
				s.publish(constants.MSG_GAME_OVER, snap)
				continue
			}
			if ev == engine.EventAte {
				s.logger.Debug().Int("score", snap.Score).Msg("Food eaten")
			}
			s.publish(constants.MSG_GAME_UPDATE, snap)
		}
	}
}

func (s *Session) send(cmd command) bool {
	select {
	case s.cmds <- cmd:
		return true
	case <-s.done:
		return false
	}
}

// SetHeading forwards a heading request to the engine. It reports false if
// the session has already stopped.
func (s *Session) SetHeading(d constants.Direction) bool {
	return s.send(command{kind: cmdHeading, dir: d})
}

// Restart resets the game and starts a fresh ticker.
func (s *Session) Restart() bool {
	return s.send(command{kind: cmdRestart})
}

func (s *Session) Snapshot() (models.Snapshot, bool) {
	reply := make(chan models.Snapshot, 1)
	if !s.send(command{kind: cmdSnapshot, reply: reply}) {
		return models.Snapshot{}, false
	}
	return <-reply, true
}

// Stop ends the session and waits for its goroutine to exit. No publish
// happens after Stop returns. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(s.cancel)
	<-s.done
}

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
