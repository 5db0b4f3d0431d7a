package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/artikel/{guideID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest("GET", "/artikel/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/artikel/{guideID}", "404"))
	if got != 2 {
		t.Errorf("expected 2 requests on the route pattern, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.AssessmentSubmitted("fresh_graduate")
	m.AssessmentSubmitted("fresh_graduate")
	m.AssessmentSubmitted("career_switch")
	m.GuideChanged("create")

	if got := testutil.ToFloat64(m.assessments.WithLabelValues("fresh_graduate")); got != 2 {
		t.Errorf("expected 2 fresh graduate submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.assessments.WithLabelValues("career_switch")); got != 1 {
		t.Errorf("expected 1 career switch submission, got %v", got)
	}
	if got := testutil.ToFloat64(m.guides.WithLabelValues("create")); got != 1 {
		t.Errorf("expected 1 guide create, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.GuideChanged("delete")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `career_guide_changes_total{action="delete"} 1`) {
		t.Errorf("metric missing from exposition:\n%s", body)
	}
}
