// Package nav exposes navigation commands in the shell.
package nav

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rover.go/pkg/cli/sh"
	"github.com/robotalks/rover.go/pkg/drive"
	"github.com/robotalks/rover.go/pkg/geo"
	"github.com/robotalks/rover.go/pkg/navbot/msgs"
)

// ParseGoto parses LAT LON or LAT,LON.
func ParseGoto(args []string) (*msgs.NavGoto, error) {
	var p geo.Point
	var err error
	switch len(args) {
	case 1:
		p, err = geo.ParsePoint(args[0])
	case 2:
		p, err = geo.ParsePoint(args[0] + "," + args[1])
	default:
		return nil, fmt.Errorf("LAT LON required")
	}
	if err != nil {
		return nil, err
	}
	return &msgs.NavGoto{Lat: p.Lat, Lon: p.Lon}, nil
}

// ParseFollow parses waypoints from args joined, in LAT,LON;LAT,LON.
func ParseFollow(args []string) (*msgs.NavFollow, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("WAYPOINTS required")
	}
	route, err := geo.ParseRoute(strings.Join(args, ";"))
	if err != nil {
		return nil, err
	}
	return msgs.NewNavFollow(route), nil
}

// ParseManual parses MOTION [SPEED] [DURATION_MS].
func ParseManual(args []string) (*msgs.NavManual, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("MOTION required")
	}
	motion, err := drive.ParseMotion(args[0])
	if err != nil {
		return nil, err
	}
	msg := &msgs.NavManual{Motion: string(motion)}
	if len(args) > 1 {
		val, err := strconv.ParseFloat(args[1], 32)
		if err != nil || val < 0 || val > 1 {
			return nil, fmt.Errorf("invalid SPEED %q, 0 to 1 expected", args[1])
		}
		msg.Speed = float32(val)
	}
	if len(args) > 2 {
		val, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid DURATION_MS: %v", err)
		}
		msg.DurationMs = uint32(val)
	}
	return msg, nil
}

var (
	// GotoCmd navigates to a destination along a fetched route.
	GotoCmd = ishell.Cmd{
		Name:    "nav.goto",
		Aliases: []string{"goto"},
		Help:    "LAT LON",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseGoto(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// FollowCmd navigates through waypoints.
	FollowCmd = ishell.Cmd{
		Name:    "nav.follow",
		Aliases: []string{"follow"},
		Help:    "LAT,LON;LAT,LON...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseFollow(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}

	// StopCmd stops navigation and motors.
	StopCmd = ishell.Cmd{
		Name:    "nav.stop",
		Aliases: []string{"stop", "s"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.NavStop{})
		}),
	}

	// StatusCmd queries navigation status.
	StatusCmd = ishell.Cmd{
		Name:    "nav.status",
		Aliases: []string{"status", "st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.NavStatusQuery{})
		}),
	}

	// ManualCmd drives a short manual motion.
	ManualCmd = ishell.Cmd{
		Name:    "nav.manual",
		Aliases: []string{"m"},
		Help:    "forward|backward|left|right|stop [SPEED] [DURATION_MS]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			msg, err := ParseManual(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msg)
		}),
	}
)

func init() {
	sh.AddCmds(
		&GotoCmd,
		&FollowCmd,
		&StopCmd,
		&StatusCmd,
		&ManualCmd,
	)
}
