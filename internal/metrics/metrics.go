// Package metrics holds the Prometheus instruments for the embed pipeline
// and public submissions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Embed render outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeAccessDenied = "access_denied"
	OutcomeError        = "error"
)

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics bundles the application counters. One instance is created at
// startup and injected into the handlers that record against it.
type Metrics struct {
	EmbedRenders *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EmbedRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trustimonials_embed_renders_total",
			Help: "Embed documents served, by widget type and outcome",
		}, []string{"widget_type", "outcome"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trustimonials_submissions_total",
			Help: "Public testimonial submissions, by channel and outcome",
		}, []string{"channel", "outcome"}),
	}

	reg.MustRegister(m.EmbedRenders)
	reg.MustRegister(m.Submissions)
	return m
}

// RecordEmbedRender counts one served embed document.
func (m *Metrics) RecordEmbedRender(widgetType, outcome string) {
	m.EmbedRenders.WithLabelValues(widgetType, outcome).Inc()
}

// RecordSubmission counts one public submission attempt.
func (m *Metrics) RecordSubmission(channel, outcome string) {
	m.Submissions.WithLabelValues(channel, outcome).Inc()
}
