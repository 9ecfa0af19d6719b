// Package tui plays the game in a terminal using Bubble Tea.
package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"snake-landing/constants"
	"snake-landing/engine"
	"snake-landing/input"
	"snake-landing/models"
)

// TickMsg advances the game by one step. Ticks from a previous game carry an
// older generation and are dropped.
type TickMsg struct {
	gen int
}

type Model struct {
	eng      *engine.Engine
	tickRate time.Duration
	gen      int
	last     engine.Event
}

func New(cfg engine.Config, tickRate time.Duration, rng *rand.Rand) Model {
	if tickRate <= 0 {
		tickRate = constants.TICK_RATE
	}
	return Model{
		eng:      engine.New(cfg, rng),
		tickRate: tickRate,
	}
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.tickRate, func(time.Time) tea.Msg {
		return TickMsg{gen: gen}
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.eng.Status() != models.StatusOver {
				return m, nil
			}
			m.eng.Reset()
			m.gen++
			m.last = engine.EventNone
			return m, m.tick()
		}
		if dir, ok := input.ParseKey(msg.String()); ok {
			m.eng.SetHeading(dir)
		}
		return m, nil

	case TickMsg:
		if msg.gen != m.gen || m.eng.Status() == models.StatusOver {
			return m, nil
		}
		m.last = m.eng.Tick()
		if m.last.GameOver() {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	snap := m.eng.Snapshot()
	size := m.eng.Config().GridSize

	cells := make(map[models.Position]byte, len(snap.Snake)+1)
	if snap.Food != nil {
		cells[*snap.Food] = '*'
	}
	for i, p := range snap.Snake {
		if i == 0 {
			cells[p] = '@'
		} else {
			cells[p] = 'o'
		}
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", size) + "+\n"
	b.WriteString(border)
	for y := 0; y < size; y++ {
		b.WriteByte('|')
		for x := 0; x < size; x++ {
			if c, ok := cells[models.Position{X: x, Y: y}]; ok {
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)

	if snap.Status == models.StatusOver {
		fmt.Fprintf(&b, "GAME OVER (%s)  final score: %d\n", m.last, snap.Score)
		b.WriteString("r: restart  q: quit\n")
	} else {
		fmt.Fprintf(&b, "Score: %d\n", snap.Score)
		b.WriteString("arrows/wasd: steer  q: quit\n")
	}
	return b.String()
}
