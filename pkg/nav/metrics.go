package nav

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports navigation progress. A nil *Metrics records nothing.
type Metrics struct {
	Ticks          prometheus.Counter
	Reached        prometheus.Counter
	Runs           *prometheus.CounterVec
	Distance       prometheus.Gauge
	BearingError   prometheus.Gauge
	WaypointIndex  prometheus.Gauge
	LeftSpeed      prometheus.Gauge
	RightSpeed     prometheus.Gauge
	WaypointsTotal prometheus.Gauge
}

// NewMetrics creates Metrics and registers them with reg if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks:          newCounter("ticks_total", "Control ticks which issued a drive command."),
		Reached:        newCounter("waypoints_reached_total", "Waypoints reached."),
		Distance:       newGauge("distance_meters", "Distance to the current waypoint."),
		BearingError:   newGauge("bearing_error_degrees", "Signed bearing error, positive is clockwise."),
		WaypointIndex:  newGauge("waypoint_index", "Index of the current waypoint."),
		LeftSpeed:      newGauge("left_speed", "Last commanded left speed."),
		RightSpeed:     newGauge("right_speed", "Last commanded right speed."),
		WaypointsTotal: newGauge("waypoints", "Waypoints of the current route."),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rover",
			Subsystem: "nav",
			Name:      "runs_total",
			Help:      "Navigation runs by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.Reached, m.Runs, m.Distance, m.BearingError,
			m.WaypointIndex, m.LeftSpeed, m.RightSpeed, m.WaypointsTotal)
	}
	return m
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rover",
		Subsystem: "nav",
		Name:      name,
		Help:      help,
	})
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rover",
		Subsystem: "nav",
		Name:      name,
		Help:      help,
	})
}

func (m *Metrics) started(waypoints int) {
	if m == nil {
		return
	}
	m.WaypointsTotal.Set(float64(waypoints))
	m.WaypointIndex.Set(0)
}

func (m *Metrics) seeking(index int) {
	if m != nil {
		m.WaypointIndex.Set(float64(index))
	}
}

func (m *Metrics) observed(s *Snapshot) {
	if m == nil {
		return
	}
	m.Distance.Set(s.Distance)
	m.BearingError.Set(s.BearingError)
}

func (m *Metrics) ticked(s *Snapshot) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.LeftSpeed.Set(s.Command.Left)
	m.RightSpeed.Set(s.Command.Right)
}

func (m *Metrics) reached() {
	if m != nil {
		m.Reached.Inc()
	}
}

func (m *Metrics) finished(result string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(result).Inc()
	m.LeftSpeed.Set(0)
	m.RightSpeed.Set(0)
}
