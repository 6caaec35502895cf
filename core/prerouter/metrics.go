package prerouter

import (
	"net/http"
	"strconv"

	"github.com/caasmo/phtunnel/core"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestsMetricName = "phtunnel_http_requests_total"
	requestsMetricHelp = "Total number of HTTP requests handled by the gateway, labeled by status code."
)

// Metrics counts requests by response status code.
type Metrics struct {
	app           *core.App
	requestsTotal *prometheus.CounterVec
}

// NewMetrics registers the request counter on the App's metrics registry.
// A counter already registered there is reused.
func NewMetrics(app *core.App) (*Metrics, error) {
	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: requestsMetricName,
			Help: requestsMetricHelp,
		},
		[]string{"code"},
	)

	if err := app.MetricsRegistry().Register(counterVec); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		counterVec = are.ExistingCollector.(*prometheus.CounterVec)
	}

	return &Metrics{app: app, requestsTotal: counterVec}, nil
}

// Execute counts the request once the rest of the chain has run. It reads
// the status from the core.ResponseRecorder installed by Recorder.
func (m *Metrics) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.app.Config().Metrics.Activated {
			next.ServeHTTP(w, r)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			m.app.Logger().Error("metrics middleware: expected core.ResponseRecorder", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(strconv.Itoa(rec.Status)).Inc()
	})
}
