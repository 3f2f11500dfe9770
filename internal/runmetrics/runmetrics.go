// Package runmetrics counts what a single confdata run did and dumps it in
// the Prometheus text format for the node_exporter textfile collector.
package runmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "confdata"

type Recorder struct {
	registry *prometheus.Registry

	pagesFetched     *prometheus.CounterVec
	recordsEmitted   *prometheus.CounterVec
	documentsWritten prometheus.Counter
	lastSuccess      prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		pagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Number of API result pages or GraphQL responses fetched.",
		}, []string{"source"}),
		recordsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "Number of normalized records produced.",
		}, []string{"kind"}),
		documentsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_written_total",
			Help:      "Number of documents written to disk.",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) PagesFetched(source string, n int) {
	r.pagesFetched.WithLabelValues(source).Add(float64(n))
}

func (r *Recorder) RecordsEmitted(kind string, n int) {
	r.recordsEmitted.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) DocumentWritten() {
	r.documentsWritten.Inc()
}

func (r *Recorder) Succeeded(at time.Time) {
	r.lastSuccess.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes every metric to path. A nil Recorder or an
// empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
