package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil))
	assert.Equal(t, ResultCanceled, ResultFor(context.Canceled))
	assert.Equal(t, ResultCanceled, ResultFor(fmt.Errorf("render: %w", context.DeadlineExceeded)))
	assert.Equal(t, ResultFailed, ResultFor(errors.New("boom")))
}

func TestNoopRecorder_DoesNotPanic(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObservePageRender("post", time.Millisecond, ResultSuccess)
	r.IncHighlight("go", ResultSuccess)
	r.IncPostCache(true)
	r.IncContentReload(ResultFailed)
	r.SetPostCount(3)
	r.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var p *PrometheusRecorder
	assert.NotPanics(t, func() {
		p.IncHighlight("go", ResultSuccess)
		p.SetPostCount(1)
	})
}
