// Package drive controls the differential-drive motors.
package drive

import (
	"fmt"
	"math"
)

// Command is a normalized drive command for both sides.
// Speeds are in [0, 1], direction is given by the flags.
type Command struct {
	Left         float64 `json:"left"`
	Right        float64 `json:"right"`
	LeftForward  bool    `json:"left_forward"`
	RightForward bool    `json:"right_forward"`
}

// Actuator converts commands to motor signals.
type Actuator interface {
	// Drive applies the command.
	Drive(Command) error
	// Stop zeros both speeds and clears direction flags.
	Stop() error
}

// Clamp limits v in [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Clamped returns the command with speeds limited to [0, 1].
func (c Command) Clamped() Command {
	c.Left, c.Right = Clamp(c.Left, 0, 1), Clamp(c.Right, 0, 1)
	return c
}

// IsStop indicates both sides are idle.
func (c Command) IsStop() bool {
	return c.Left == 0 && c.Right == 0
}

// Signed gets speeds in [-1, 1] with reverse as negative.
func (c Command) Signed() (left, right float64) {
	left, right = c.Left, c.Right
	if !c.LeftForward {
		left = -left
	}
	if !c.RightForward {
		right = -right
	}
	return
}

func (c Command) String() string {
	l, r := c.Signed()
	return fmt.Sprintf("L=%+.2f R=%+.2f", l, r)
}
