package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	return mrr.Body.Bytes()
}

func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := scrape(t)
	if !bytes.Contains(body, []byte("memoryd_http_requests_total")) {
		t.Fatalf("memoryd_http_requests_total missing from metrics")
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Delete("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/things/123", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rr.Code)
	}
	body := scrape(t)
	if !bytes.Contains(body, []byte(`path="/things/{id}"`)) {
		t.Fatalf("route pattern label missing")
	}
	if bytes.Contains(body, []byte(`path="/things/123"`)) {
		t.Fatalf("raw path used as label")
	}
}

func TestStatusRecorderFlushes(t *testing.T) {
	rr := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rr, status: http.StatusOK}
	var w http.ResponseWriter = sr
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatalf("statusRecorder does not implement http.Flusher")
	}
	f.Flush()
	if !rr.Flushed {
		t.Fatalf("flush not forwarded")
	}
}

func TestIncrementBackpressure(t *testing.T) {
	IncrementBackpressure("")
	if !bytes.Contains(scrape(t), []byte(`memoryd_http_backpressure_total{reason="unspecified"}`)) {
		t.Fatalf("backpressure counter missing")
	}
}

func TestGenerateCountsStreamEvents(t *testing.T) {
	ts := newTestServer(t, true)
	w := ts.do(t, http.MethodPost, "/generate", map[string]string{"prompt": "hi"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := scrape(t)
	for _, want := range []string{`memoryd_http_stream_events_total{kind="fragment"}`, `memoryd_http_stream_events_total{kind="finished"}`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Fatalf("%s missing", want)
		}
	}
}
