// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts resolution events in a private Prometheus registry.
// Runs are batch jobs, so the registry is written once as a node_exporter
// textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alexmatch"

// Recorder implements the observer interfaces of the openalex, institution
// and resolve packages. A nil *Recorder is a valid no-op.
type Recorder struct {
	reg *prometheus.Registry

	apiRequests        *prometheus.CounterVec
	institutionLookups *prometheus.CounterVec
	classifications    *prometheus.CounterVec
	outcomes           *prometheus.CounterVec
	investigatorTime   prometheus.Histogram
	runInfo            *prometheus.GaugeVec
}

// New returns a Recorder labelled with runID.
func New(runID string) *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	r := &Recorder{
		reg: reg,

		// apiRequests counts OpenAlex requests by endpoint and outcome.
		// Labels: endpoint (authors, institutions, works), outcome (ok, error, cache_hit)
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "openalex",
			Name:      "requests_total",
			Help:      "OpenAlex API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		// Labels: outcome (hit, lookup, not_found, error)
		institutionLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "institution",
			Name:      "lookups_total",
			Help:      "Institution resolutions by cache outcome",
		}, []string{"outcome"}),

		// Labels: classification (exact, institution, topic, rejected)
		classifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "candidates_total",
			Help:      "Candidates evaluated by classification",
		}, []string{"classification"}),

		// Labels: outcome (matched, unmatched, skipped, failed)
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "investigators_total",
			Help:      "Investigators processed by outcome",
		}, []string{"outcome"}),

		investigatorTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "investigator_seconds",
			Help:      "Wall time spent resolving one investigator",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),

		runInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_info",
			Help:      "Identifies the run that produced this file",
		}, []string{"run_id"}),
	}
	r.runInfo.WithLabelValues(runID).Set(1)
	return r
}

// APIRequest records one OpenAlex request.
func (r *Recorder) APIRequest(endpoint, outcome string) {
	if r == nil {
		return
	}
	r.apiRequests.WithLabelValues(endpoint, outcome).Inc()
}

// InstitutionLookup records one institution resolution.
func (r *Recorder) InstitutionLookup(outcome string) {
	if r == nil {
		return
	}
	r.institutionLookups.WithLabelValues(outcome).Inc()
}

// Classified records one candidate classification.
func (r *Recorder) Classified(classification string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(classification).Inc()
}

// Investigator records the outcome and duration of one investigator.
func (r *Recorder) Investigator(outcome string, took time.Duration) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(outcome).Inc()
	r.investigatorTime.Observe(took.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
