// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application counters. A nil *Metrics discards updates.
type Metrics struct {
	reports  *prometheus.CounterVec
	logins   *prometheus.CounterVec
	signups  prometheus.Counter
	mail     *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "findmate",
			Name:      "report_events_total",
			Help:      "Report lifecycle events by kind and event (submitted, resolved, discarded).",
		}, []string{"kind", "event"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "findmate",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "findmate",
			Name:      "signups_total",
			Help:      "Accounts created.",
		}),
		mail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "findmate",
			Name:      "mail_total",
			Help:      "Outbound mail by result (queued, sent, failed).",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "findmate",
			Name:      "http_requests_total",
			Help:      "HTTP requests by handler group and status class.",
		}, []string{"handler", "code"}),
	}
	reg.MustRegister(m.reports, m.logins, m.signups, m.mail, m.requests)
	return m
}

// Report events.
const (
	EventSubmitted = "submitted"
	EventResolved  = "resolved"
	EventDiscarded = "discarded"
)

// Report counts a lifecycle event for a report kind.
func (m *Metrics) Report(kind, event string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(kind, event).Inc()
}

// Login counts a login attempt with the given result.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// Signup counts a created account.
func (m *Metrics) Signup() {
	if m == nil {
		return
	}
	m.signups.Inc()
}

// Mail counts an outbound mail event.
func (m *Metrics) Mail(result string) {
	if m == nil {
		return
	}
	m.mail.WithLabelValues(result).Inc()
}

// Request counts a served HTTP request.
func (m *Metrics) Request(handler string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(handler, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
