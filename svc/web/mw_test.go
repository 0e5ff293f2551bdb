package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"inkwell/cfg"
	"inkwell/metrics"
)

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	m := NewMw(nil, nil, &cfg.Cfg{})
	r := chi.NewRouter()
	r.Use(m.Metrics)
	r.Get("/{filename}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(r)
	defer ts.Close()

	before := testutil.CollectAndCount(metrics.RequestDuration)
	for _, path := range []string{"/aaa.txt", "/bbb.txt", "/ccc.md"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	after := testutil.CollectAndCount(metrics.RequestDuration)

	// Distinct document names share the /{filename} series instead of each
	// minting a new label value.
	if after-before > 1 {
		t.Errorf("three document paths minted %d new label sets, want at most 1", after-before)
	}
}

func TestRoutePatternFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/anything", nil)
	if got := routePattern(r); got != "unmatched" {
		t.Errorf("routePattern = %q, want unmatched for a request without route context", got)
	}
}
