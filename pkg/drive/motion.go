package drive

import (
	"fmt"
	"time"
)

// Motion is a manual maneuver.
type Motion string

// Motions
const (
	Forward  Motion = "forward"
	Backward Motion = "backward"
	Left     Motion = "left"
	Right    Motion = "right"
	Halt     Motion = "stop"
)

// Manual control defaults.
const (
	DefaultManualSpeed = 0.8
	DefaultMoveTime    = 300 * time.Millisecond
	DefaultTurnTime    = 100 * time.Millisecond
)

// ParseMotion validates the motion name.
func ParseMotion(s string) (Motion, error) {
	switch m := Motion(s); m {
	case Forward, Backward, Left, Right, Halt:
		return m, nil
	}
	return "", fmt.Errorf("unknown motion %q", s)
}

// Command converts the motion to a drive command. Turns pivot in place.
func (m Motion) Command(speed float64) Command {
	speed = Clamp(speed, 0, 1)
	switch m {
	case Forward:
		return Command{Left: speed, Right: speed, LeftForward: true, RightForward: true}
	case Backward:
		return Command{Left: speed, Right: speed}
	case Left:
		return Command{Left: speed, Right: speed, RightForward: true}
	case Right:
		return Command{Left: speed, Right: speed, LeftForward: true}
	}
	return Command{}
}

// DefaultDuration gets how long the motion lasts if not specified.
func (m Motion) DefaultDuration() time.Duration {
	switch m {
	case Forward, Backward:
		return DefaultMoveTime
	case Left, Right:
		return DefaultTurnTime
	}
	return 0
}

// Apply runs the motion on an actuator. Stop is issued right away
// for Halt, otherwise the caller stops it after the duration.
func (m Motion) Apply(a Actuator, speed float64) error {
	if m == Halt {
		return a.Stop()
	}
	return a.Drive(m.Command(speed))
}
