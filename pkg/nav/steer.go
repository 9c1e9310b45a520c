package nav

import "github.com/robotalks/rover.go/pkg/drive"

// Turn maps the bearing error (degrees, positive is clockwise) to
// a turn ratio in [-1, 1].
func (c *Config) Turn(bearingError float64) float64 {
	return drive.Clamp(c.Gain*bearingError, -1, 1)
}

// Steer computes the drive command for the bearing error. Both sides
// always run forward, steering only changes the speed ratio.
func (c *Config) Steer(bearingError float64) drive.Command {
	turn := c.Turn(bearingError)
	return drive.Command{
		Left:         drive.Clamp(c.BaseSpeed*(1-turn), 0, 1),
		Right:        drive.Clamp(c.BaseSpeed*(1+turn), 0, 1),
		LeftForward:  true,
		RightForward: true,
	}
}
