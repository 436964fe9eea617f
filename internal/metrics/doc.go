// Package metrics provides observability hooks for page rendering, content
// reloads and HTTP traffic.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can be
// left off without nil checks. When metrics are enabled the server builds a
// PrometheusRecorder on its own registry and exposes it through HTTPHandler:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg, logger))
package metrics
