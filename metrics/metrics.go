package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Editor metrics
	EditorSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "editor_sessions_open",
		Help: "Number of open editor sessions",
	})

	EditorCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editor_commands_total",
			Help: "Editor commands applied, by operation and outcome",
		},
		[]string{"op", "result"},
	)

	// Content metrics
	PostsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_saved_total",
			Help: "Posts written to the store, by status",
		},
		[]string{"status"},
	)

	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posts_deleted_total",
		Help: "Posts removed from the store",
	})

	ContentFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_render_fallbacks_total",
			Help: "Post bodies rendered without strict validation, by fallback",
		},
		[]string{"fallback"},
	)

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "post_render_duration_seconds",
		Help:    "Time spent rendering a post body",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	// Drafting metrics
	DraftRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_generation_total",
			Help: "LLM draft generations, by outcome",
		},
		[]string{"result"},
	)
)

// Result labels an outcome for counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
