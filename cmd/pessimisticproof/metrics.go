package main

import (
	"context"
	"net/http"
	"time"

	"github.com/agglayer/pessimistic-proof-go/log"
	"github.com/agglayer/pessimistic-proof-go/metrics"
)

// serveMetrics mounts the Prometheus scrape endpoint in the background when
// addr is set, and returns a shutdown func to call once the proof is done.
// A failed scrape endpoint must never abort proof generation, so listen
// errors after startup are only logged.
func serveMetrics(addr string) func() {
	if addr == "" {
		return func() {}
	}

	exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry, metrics.DefaultPrometheusConfig())
	srv := &http.Server{Addr: addr, Handler: exporter.Handler()}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics: server exited", "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// logReportBackend pushes a metrics snapshot to the structured logger,
// playing the role a push-gateway backend would play in production.
type logReportBackend struct {
	logger *log.Logger
}

// Report implements metrics.ReportBackend.
func (b *logReportBackend) Report(values map[string]float64) error {
	args := make([]any, 0, len(values)*2)
	for name, v := range values {
		args = append(args, name, v)
	}
	b.logger.Info("metrics snapshot", args...)
	return nil
}

// startMetricsReporting seeds a MetricsReporter from the current registry
// snapshot and starts pushing it to the log backend on the given interval.
// It returns a stop func that must be called before the process exits.
func startMetricsReporting(interval time.Duration) func() {
	reporter := metrics.NewMetricsReporter(interval)
	reporter.RegisterBackend("log", &logReportBackend{logger: log.Default().Module("metrics")})

	for name, v := range metrics.DefaultRegistry.Snapshot() {
		switch value := v.(type) {
		case int64:
			reporter.RecordMetric(name, float64(value))
		case map[string]interface{}:
			if sum, ok := value["sum"].(float64); ok {
				reporter.RecordMetric(name+".sum", sum)
			}
			if count, ok := value["count"].(int64); ok {
				reporter.RecordMetric(name+".count", float64(count))
			}
		}
	}

	reporter.Start()
	return reporter.Stop
}
