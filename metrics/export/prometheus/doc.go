// Package prometheus provides Prometheus collectors for permflow metrics.
//
// [NewPrometheusExporter] accepts a [permflow.Engine] and exposes an [http.Handler]
// that renders all permflow counters and histograms in Prometheus text exposition format.
// Counter names are prefixed permflow_*_total; the single histogram is
// permflow_apply_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
