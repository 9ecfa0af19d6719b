// Package input maps raw client controls onto snake headings.
package input

import (
	"math"
	"strings"

	"snake-landing/constants"
)

// ParseKey accepts a heading name, a browser KeyboardEvent.key value for the
// arrow keys, or one of the WASD letters.
func ParseKey(key string) (constants.Direction, bool) {
	switch key {
	case "ArrowUp":
		return constants.UP, true
	case "ArrowDown":
		return constants.DOWN, true
	case "ArrowLeft":
		return constants.LEFT, true
	case "ArrowRight":
		return constants.RIGHT, true
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "up", "w":
		return constants.UP, true
	case "down", "s":
		return constants.DOWN, true
	case "left", "a":
		return constants.LEFT, true
	case "right", "d":
		return constants.RIGHT, true
	}
	return 0, false
}

// FromSwipe turns a touch gesture into a heading. The longer axis decides, and
// gestures shorter than MIN_SWIPE_DISTANCE along it are ignored. Screen
// coordinates are assumed, so positive dy points down.
func FromSwipe(dx, dy float64) (constants.Direction, bool) {
	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax > ay {
		if ax <= constants.MIN_SWIPE_DISTANCE {
			return 0, false
		}
		if dx > 0 {
			return constants.RIGHT, true
		}
		return constants.LEFT, true
	}

	if ay <= constants.MIN_SWIPE_DISTANCE {
		return 0, false
	}
	if dy > 0 {
		return constants.DOWN, true
	}
	return constants.UP, true
}
