package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePageRender("post", 150*time.Millisecond, ResultSuccess)
	pr.IncHighlight("go", ResultSuccess)
	pr.IncHighlight("nope", ResultFailed)
	pr.IncPostCache(false)
	pr.IncContentReload(ResultSuccess)
	pr.SetPostCount(4)
	pr.ObserveHTTPRequest(http.MethodGet, "/blog/{slug}", http.StatusOK, 20*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"site_page_render_duration_seconds",
		"site_highlight_total",
		"site_post_cache_lookups_total",
		"site_content_reloads_total",
		"site_posts",
		"site_http_request_duration_seconds",
		"site_http_requests_total",
	} {
		assert.True(t, names[want], want)
	}
}

func TestHTTPHandler_ServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetPostCount(2)

	rec := httptest.NewRecorder()
	HTTPHandler(reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "site_posts 2")
	assert.Contains(t, string(body), "promhttp_metric_handler_requests_in_flight 1")
}
