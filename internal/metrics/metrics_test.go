package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, s *Service) string {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("scrape failed: %d", w.Code)
	}
	return w.Body.String()
}

func TestObserveRunCountsOutcomes(t *testing.T) {
	s := NewService()
	start := time.Now()
	s.ObserveRun("segmentation", start, nil)
	s.ObserveRun("segmentation", start, nil)
	s.ObserveRun("forecast", start, errors.New("boom"))

	out := scrape(t, s)
	if !strings.Contains(out, `dss_analysis_runs_total{engine="segmentation",outcome="ok"} 2`) {
		t.Errorf("segmentation counter wrong:\n%s", out)
	}
	if !strings.Contains(out, `dss_analysis_runs_total{engine="forecast",outcome="error"} 1`) {
		t.Errorf("forecast error counter wrong:\n%s", out)
	}
	if !strings.Contains(out, "dss_analysis_duration_seconds") {
		t.Error("duration histogram missing")
	}
}

func TestSetDatasetRows(t *testing.T) {
	s := NewService()
	s.SetDatasetRows("s1", 541909)
	if !strings.Contains(scrape(t, s), `dss_dataset_rows{session="s1"} 541909`) {
		t.Error("dataset gauge missing or wrong")
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	a, b := NewService(), NewService()
	a.ObserveRun("optimization", time.Now(), nil)
	if strings.Contains(scrape(t, b), `engine="optimization"`) {
		t.Fatal("services share a registry")
	}
}
