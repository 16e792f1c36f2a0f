// Package metrics exposes handshake and packet protection counters to Prometheus.
//
// A nil *Metrics is valid and records nothing, so components take it as an
// optional dependency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dsrtp"

// Metrics encapsulates the Prometheus collectors shared by handshake endpoints
// and packet sessions.
type Metrics struct {
	HandshakeDuration *prometheus.HistogramVec // handshake latency by role
	HandshakeFailures *prometheus.CounterVec   // failed handshakes by role and reason
	Packets           *prometheus.CounterVec   // protect/unprotect results by direction and outcome
}

// New creates the collectors and registers them with reg when reg is non-nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		HandshakeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "handshake",
			Name:      "duration_seconds",
			Help:      "Time from the first handshake step to an established channel.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"role"}),
		HandshakeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handshake",
			Name:      "failures_total",
			Help:      "Handshakes that ended in the failed state.",
		}, []string{"role", "reason"}),
		Packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "srtp",
			Name:      "packets_total",
			Help:      "Packets processed by SRTP sessions.",
		}, []string{"direction", "outcome"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.HandshakeDuration, m.HandshakeFailures, m.Packets} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) ObserveHandshake(role string, d time.Duration) {
	if m == nil {
		return
	}
	m.HandshakeDuration.WithLabelValues(role).Observe(d.Seconds())
}

func (m *Metrics) HandshakeFailed(role, reason string) {
	if m == nil {
		return
	}
	m.HandshakeFailures.WithLabelValues(role, reason).Inc()
}

func (m *Metrics) Packet(direction, outcome string) {
	if m == nil {
		return
	}
	m.Packets.WithLabelValues(direction, outcome).Inc()
}
