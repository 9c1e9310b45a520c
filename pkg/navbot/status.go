package navbot

import (
	"github.com/robotalks/rover.go/pkg/nav"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
)

// Status is the navigation state served over HTTP.
type Status struct {
	nav.Snapshot
	// Running is true from accepting a goto/follow until the run ends,
	// including the route request.
	Running bool `json:"running"`
}

// NewNavStatus converts the state into the status event.
func NewNavStatus(s Status) *msgs.NavStatus {
	st := &msgs.NavStatus{
		Phase:        s.State.Phase.String(),
		Index:        uint32(s.State.Index),
		Waypoints:    uint32(s.Waypoints),
		Distance:     s.Distance,
		BearingError: s.BearingError,
		Left:         float32(s.Command.Left),
		Right:        float32(s.Command.Right),
		LeftForward:  s.Command.LeftForward,
		RightForward: s.Command.RightForward,
		Running:      s.Running,
		Error:        s.Err,
	}
	switch s.State.Phase {
	case nav.PhaseSeeking, nav.PhaseReached:
		st.Target = msgs.NewWaypoint(s.Target)
	}
	if s.HasFix {
		st.Position = msgs.NewWaypoint(s.Position)
	}
	return st
}
