package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("reading metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestMetricsMiddleware(t *testing.T) {
	before := counterValue(t, RequestsTotal.WithLabelValues("GET", "2xx"))

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/articles", nil))

	after := counterValue(t, RequestsTotal.WithLabelValues("GET", "2xx"))
	if after != before+1 {
		t.Errorf("requests_total = %v, want %v", after, before+1)
	}
}

func TestMetricsMiddlewareStatusClasses(t *testing.T) {
	tests := []struct {
		status int
		class  string
	}{
		{http.StatusCreated, "2xx"},
		{http.StatusForbidden, "4xx"},
		{http.StatusInternalServerError, "5xx"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			before := counterValue(t, RequestsTotal.WithLabelValues("POST", tt.class))

			handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/login", nil))

			after := counterValue(t, RequestsTotal.WithLabelValues("POST", tt.class))
			if after != before+1 {
				t.Errorf("requests_total{%s} = %v, want %v", tt.class, after, before+1)
			}
		})
	}
}

func TestMetricsMiddlewareDefaultStatus(t *testing.T) {
	before := counterValue(t, RequestsTotal.WithLabelValues("GET", "2xx"))

	// A handler that never calls WriteHeader counts as 200.
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	after := counterValue(t, RequestsTotal.WithLabelValues("GET", "2xx"))
	if after != before+1 {
		t.Errorf("requests_total = %v, want %v", after, before+1)
	}
}

func TestLoginsCounter(t *testing.T) {
	before := counterValue(t, LoginsTotal.WithLabelValues("standard", "success"))
	LoginsTotal.WithLabelValues("standard", "success").Inc()
	after := counterValue(t, LoginsTotal.WithLabelValues("standard", "success"))
	if after != before+1 {
		t.Errorf("logins_total = %v, want %v", after, before+1)
	}
}
