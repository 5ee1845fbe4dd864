package folio

import (
	"errors"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/folio/content"
)

// Build outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// BuildRecorder records build and load metrics in Prometheus.
type BuildRecorder struct {
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	posts         prom.Gauge
	loadErrors    *prom.CounterVec
}

// NewBuildRecorder constructs and registers the metrics on reg.
func NewBuildRecorder(reg prom.Registerer) *BuildRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &BuildRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "folio",
			Name:      "build_duration_seconds",
			Help:      "Total static build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "folio",
			Name:      "build_outcomes_total",
			Help:      "Builds by final status",
		}, []string{"outcome"}),
		posts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "folio",
			Name:      "posts",
			Help:      "Listed posts in the last loaded snapshot",
		}),
		loadErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "folio",
			Name:      "load_errors_total",
			Help:      "Post load failures by kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.buildDuration, r.buildOutcome, r.posts, r.loadErrors)
	return r
}

// ObserveBuild records one build's duration and outcome.
func (r *BuildRecorder) ObserveBuild(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.buildDuration.Observe(d.Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	r.buildOutcome.WithLabelValues(outcome).Inc()
}

// SetPosts records the listed post count.
func (r *BuildRecorder) SetPosts(n int) {
	if r == nil {
		return
	}
	r.posts.Set(float64(n))
}

// IncLoadError counts a load failure, labelled by error kind.
func (r *BuildRecorder) IncLoadError(err error) {
	if r == nil {
		return
	}
	r.loadErrors.WithLabelValues(loadErrorKind(err)).Inc()
}

func loadErrorKind(err error) string {
	var perr *content.ParseError
	var ioErr *content.IOError
	switch {
	case errors.As(err, &perr):
		return "parse"
	case errors.As(err, &ioErr):
		return "io"
	case errors.Is(err, content.ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
