package geo

import "math"

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000.0

// Radians converts degrees to radians.
func Radians(d float64) float64 {
	return d * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(r float64) float64 {
	return r * 180 / math.Pi
}

// Distance calculates the great-circle distance in meters using haversine.
func Distance(a, b Point) float64 {
	φ1, φ2 := Radians(a.Lat), Radians(b.Lat)
	dφ, dλ := Radians(b.Lat-a.Lat), Radians(b.Lon-a.Lon)
	h := math.Sin(dφ/2)*math.Sin(dφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	// floating point may overshoot near antipodes.
	h = math.Max(0, math.Min(1, h))
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// Bearing calculates the initial compass bearing in [0, 360) degrees
// along the great circle from one point to another.
func Bearing(from, to Point) float64 {
	φ1, φ2 := Radians(from.Lat), Radians(to.Lat)
	dλ := Radians(to.Lon - from.Lon)
	y := math.Sin(dλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(dλ)
	return Normalize360(Degrees(math.Atan2(y, x)))
}

// Normalize360 maps degrees into [0, 360).
func Normalize360(d float64) float64 {
	d = mod(d, 360)
	if d >= 360 {
		d = 0
	}
	return d
}

// Normalize180 maps a degree difference into (-180, 180].
func Normalize180(d float64) float64 {
	r := mod(d+540, 360) - 180
	if r <= -180 {
		r += 360
	}
	return r
}

// mod is the floored modulo, result has the sign of m.
func mod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}
