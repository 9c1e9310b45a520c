package gps

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts decoded sentences. A nil *Metrics records nothing.
type Metrics struct {
	Sentences *prometheus.CounterVec
}

// NewMetrics creates Metrics and registers collectors with reg if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rover",
			Subsystem: "gps",
			Name:      "sentences_total",
			Help:      "NMEA sentences received, by decoding result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Sentences)
	}
	return m
}

func (m *Metrics) sentence(err error) {
	if m == nil {
		return
	}
	result := "fix"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotPositional):
		result = "other"
	case errors.Is(err, ErrNoFix):
		result = "void"
	case errors.Is(err, ErrChecksum):
		result = "checksum"
	default:
		result = "malformed"
	}
	m.Sentences.WithLabelValues(result).Inc()
}
