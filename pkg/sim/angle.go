package sim

import "math"

// Angle is a compass angle in radians, clockwise from north,
// normalized into (-π, π].
type Angle float64

// AngleFromDegrees creates Angle from degrees.
func AngleFromDegrees(d float64) Angle {
	return Angle(normalizeRadians(d * math.Pi / 180.0))
}

// AddRadians adds radians to current angle.
func (a Angle) AddRadians(r float64) Angle {
	return Angle(normalizeRadians(float64(a) + r))
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets the compass bearing in [0, 360).
func (a Angle) Degrees() float64 {
	d := float64(a) * 180 / math.Pi
	if d < 0 {
		d += 360
	}
	return d
}

// Project projects distance into east and north offsets.
func (a Angle) Project(dist float64) (east, north float64) {
	return dist * math.Sin(float64(a)), dist * math.Cos(float64(a))
}

func normalizeRadians(r float64) float64 {
	if r >= 2*math.Pi || r <= -2*math.Pi {
		r = math.Remainder(r, 2*math.Pi)
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
