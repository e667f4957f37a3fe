package homepage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons recorded on the sections-skipped counter.
const (
	skipReasonUnknownTemplate = "unknown_template"
	skipReasonTemplateLoad    = "template_load"
	skipReasonResolveError    = "resolve_error"
	skipReasonNoData          = "no_data"
	skipReasonPanic           = "panic"
)

var (
	sectionsRenderedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homepage_sections_rendered_total",
			Help: "Total number of homepage sections rendered successfully",
		},
	)

	sectionsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homepage_sections_skipped_total",
			Help: "Total number of homepage sections skipped, by reason",
		},
		[]string{"reason"},
	)

	unresolvedPlacementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "homepage_order_unresolved_placements_total",
			Help: "Total number of sections whose after-section placement never resolved",
		},
	)

	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homepage_render_duration_seconds",
			Help:    "Duration of full homepage renders in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
