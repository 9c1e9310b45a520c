package navbot

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts commands. A nil *Metrics records nothing.
type Metrics struct {
	Commands *prometheus.CounterVec
}

// NewMetrics creates Metrics and registers collectors with reg if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rover",
			Subsystem: "navbot",
			Name:      "commands_total",
			Help:      "Commands received, by command and result.",
		}, []string{"command", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Commands)
	}
	return m
}

func (m *Metrics) command(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Commands.WithLabelValues(name, result).Inc()
}
