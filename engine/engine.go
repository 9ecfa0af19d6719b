// Package engine implements the single-player snake simulation: a square grid,
// one snake, one food cell and a score, advanced one step per tick.
//
// An Engine is not safe for concurrent use. The host owning it is expected to
// serialize Tick, SetHeading and Reset on one goroutine.
package engine

import (
	"math/rand/v2"
	"time"

	"snake-landing/constants"
	"snake-landing/models"
)

// Event reports what a call to Tick did.
type Event int

const (
	EventNone    Event = iota // game already over, nothing changed
	EventMoved                // snake advanced one cell
	EventAte                  // snake advanced onto food and grew
	EventHitWall              // next cell was off the board, game over
	EventHitSelf              // next cell was part of the body, game over
)

func (ev Event) String() string {
	switch ev {
	case EventMoved:
		return "moved"
	case EventAte:
		return "ate"
	case EventHitWall:
		return "hit_wall"
	case EventHitSelf:
		return "hit_self"
	default:
		return "none"
	}
}

// GameOver reports whether the event ended the game.
func (ev Event) GameOver() bool {
	return ev == EventHitWall || ev == EventHitSelf
}

type Config struct {
	GridSize   int
	FoodReward int
}

func DefaultConfig() Config {
	return Config{
		GridSize:   constants.GRID_SIZE,
		FoodReward: constants.FOOD_REWARD,
	}
}

type Engine struct {
	cfg Config
	rng *rand.Rand

	snake   []models.Position // head first
	food    models.Position
	hasFood bool
	heading constants.Direction // used by the most recent tick
	pending constants.Direction // applied by the next tick
	score   int
	status  models.Status
	ticks   uint64
}

// New returns an engine in its start configuration. Zero config fields fall
// back to the defaults. A nil rng is replaced by a time-seeded source.
func New(cfg Config, rng *rand.Rand) *Engine {
	def := DefaultConfig()
	if cfg.GridSize <= 0 {
		cfg.GridSize = def.GridSize
	}
	if cfg.FoodReward <= 0 {
		cfg.FoodReward = def.FoodReward
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	e := &Engine{cfg: cfg, rng: rng}
	e.Reset()
	return e
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Status() models.Status { return e.status }

// Reset restores the start configuration: one cell in the centre heading
// right, score zero, fresh food.
func (e *Engine) Reset() {
	center := e.cfg.GridSize / 2
	e.snake = []models.Position{{X: center, Y: center}}
	e.heading = constants.RIGHT
	e.pending = constants.RIGHT
	e.score = 0
	e.ticks = 0
	e.status = models.StatusRunning
	e.placeFood()
}

// SetHeading queues d for the next tick, replacing any earlier request.
// Reversing onto the neck is refused while the snake is longer than one cell,
// and all requests are ignored once the game is over. It reports whether the
// request was accepted.
func (e *Engine) SetHeading(d constants.Direction) bool {
	if e.status != models.StatusRunning || !d.Valid() {
		return false
	}
	if len(e.snake) > 1 && d == e.heading.Opposite() {
		return false
	}
	e.pending = d
	return true
}

// Tick advances the simulation by one step.
func (e *Engine) Tick() Event {
	if e.status != models.StatusRunning {
		return EventNone
	}

	e.heading = e.pending
	dx, dy := e.heading.Delta()
	head := e.snake[0]
	next := models.Position{X: head.X + dx, Y: head.Y + dy}

	if !e.inBounds(next) {
		e.status = models.StatusOver
		return EventHitWall
	}
	// The tail still counts: it has not moved out of the way yet.
	if e.occupied(next) {
		e.status = models.StatusOver
		return EventHitSelf
	}

	e.snake = append(e.snake, models.Position{})
	copy(e.snake[1:], e.snake)
	e.snake[0] = next
	e.ticks++

	if e.hasFood && next == e.food {
		e.score += e.cfg.FoodReward
		e.placeFood()
		return EventAte
	}

	e.snake = e.snake[:len(e.snake)-1]
	return EventMoved
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Snake:   append([]models.Position(nil), e.snake...),
		Heading: e.heading,
		Score:   e.score,
		Status:  e.status,
		Tick:    e.ticks,
	}
	if e.hasFood {
		food := e.food
		snap.Food = &food
	}
	return snap
}

func (e *Engine) inBounds(p models.Position) bool {
	n := e.cfg.GridSize
	return p.X >= 0 && p.X < n && p.Y >= 0 && p.Y < n
}

func (e *Engine) occupied(p models.Position) bool {
	for _, c := range e.snake {
		if c == p {
			return true
		}
	}
	return false
}

// placeFood samples the whole grid and retries until it lands on a free cell.
func (e *Engine) placeFood() {
	n := e.cfg.GridSize
	if len(e.snake) >= n*n {
		e.hasFood = false
		return
	}
	for {
		p := models.Position{X: e.rng.IntN(n), Y: e.rng.IntN(n)}
		if !e.occupied(p) {
			e.food = p
			e.hasFood = true
			return
		}
	}
}
