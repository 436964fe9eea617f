package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for rendering, content and HTTP metrics.
// Implementations may forward to Prometheus or any other backend.
type Recorder interface {
	ObservePageRender(page string, d time.Duration, result ResultLabel)
	IncHighlight(language string, result ResultLabel)
	IncPostCache(hit bool)
	IncContentReload(result ResultLabel)
	SetPostCount(n int)
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageRender(string, time.Duration, ResultLabel)  {}
func (NoopRecorder) IncHighlight(string, ResultLabel)                      {}
func (NoopRecorder) IncPostCache(bool)                                     {}
func (NoopRecorder) IncContentReload(ResultLabel)                          {}
func (NoopRecorder) SetPostCount(int)                                      {}
func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}

// ResultFor maps an error to a result label.
func ResultFor(err error) ResultLabel {
	switch {
	case err == nil:
		return ResultSuccess
	case isCanceled(err):
		return ResultCanceled
	default:
		return ResultFailed
	}
}
