package nav

import (
	"fmt"
	"time"

	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/geo"
)

// Phase is the phase of the state machine.
type Phase int

// Phases
const (
	PhaseIdle Phase = iota
	PhaseSeeking
	PhaseReached
	PhaseDone
	PhaseAborted
)

var phaseNames = map[Phase]string{
	PhaseIdle:    "IDLE",
	PhaseSeeking: "SEEKING",
	PhaseReached: "REACHED",
	PhaseDone:    "DONE",
	PhaseAborted: "ABORTED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// IsTerminal indicates the run is over.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseAborted
}

// State is the phase with the waypoint index.
type State struct {
	Phase Phase `json:"phase"`
	Index int   `json:"index"`
}

func (s State) String() string {
	switch s.Phase {
	case PhaseSeeking, PhaseReached:
		return fmt.Sprintf("%s(%d)", s.Phase, s.Index)
	}
	return s.Phase.String()
}

// Snapshot is a copy of the navigation state.
type Snapshot struct {
	State     State `json:"state"`
	Waypoints int   `json:"waypoints"`
	// Target is the waypoint being sought.
	Target       geo.Point     `json:"target"`
	Position     geo.Point     `json:"position"`
	HasFix       bool          `json:"has_fix"`
	Distance     float64       `json:"distance"`
	BearingError float64       `json:"bearing_error"`
	Command      drive.Command `json:"command"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Err          string        `json:"error,omitempty"`
}
