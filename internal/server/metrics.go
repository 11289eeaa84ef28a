package server

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	uploadsTotal        *prometheus.CounterVec
	uploadBytesTotal    prometheus.Counter
	metricsOnce         sync.Once
)

// initMetrics creates and registers the collectors once per process, so tests
// can build as many servers as they like.
func initMetrics() {
	metricsOnce.Do(func() {
		httpRequestDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds.",
			},
			[]string{"code", "method"},
		)
		httpRequestsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Count of all HTTP requests processed, labeled by method and status code.",
			},
			[]string{"code", "method"},
		)
		uploadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vault_uploads_total",
				Help: "Upload attempts by outcome: ok or the error kind.",
			},
			[]string{"result"},
		)
		uploadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_upload_bytes_total",
			Help: "Bytes of audio accepted by successful uploads.",
		})
		for _, c := range []prometheus.Collector{httpRequestDuration, httpRequestsTotal, uploadsTotal, uploadBytesTotal} {
			if err := prometheus.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
}

func promMiddleware(next http.Handler) http.Handler {
	initMetrics()
	return promhttp.InstrumentHandlerDuration(
		httpRequestDuration,
		promhttp.InstrumentHandlerCounter(httpRequestsTotal, next),
	)
}

func observeUpload(result string, bytes int64) {
	initMetrics()
	uploadsTotal.WithLabelValues(result).Inc()
	if bytes > 0 {
		uploadBytesTotal.Add(float64(bytes))
	}
}
