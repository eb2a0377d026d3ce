package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imagesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotecanvas_images_generated_total",
		Help: "Total number of images rendered and encoded by batch runs.",
	})

	imagesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotecanvas_images_failed_total",
		Help: "Total number of batch items that failed to render or encode.",
	})

	renderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quotecanvas_render_seconds",
		Help:    "Time to render, encode and name one batch item.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecanvas_batch_runs_total",
			Help: "Total number of batch runs by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)
