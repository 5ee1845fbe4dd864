package folio

import (
	"errors"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/eringen/folio/content"
)

func TestBuildRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewBuildRecorder(reg)

	r.ObserveBuild(500*time.Millisecond, nil)
	r.ObserveBuild(time.Second, errors.New("boom"))
	r.SetPosts(7)
	r.IncLoadError(&content.ParseError{Path: "a.md"})
	r.IncLoadError(&content.IOError{Op: "read", Path: "b.md"})

	if got := testutil.ToFloat64(r.buildOutcome.WithLabelValues(OutcomeSuccess)); got != 1 {
		t.Errorf("success outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.buildOutcome.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("failed outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.posts); got != 7 {
		t.Errorf("posts = %v, want 7", got)
	}
	if got := testutil.ToFloat64(r.loadErrors.WithLabelValues("parse")); got != 1 {
		t.Errorf("parse errors = %v, want 1", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestBuildRecorderNilSafe(t *testing.T) {
	var r *BuildRecorder
	r.ObserveBuild(time.Second, nil)
	r.SetPosts(1)
	r.IncLoadError(errors.New("x"))
}
