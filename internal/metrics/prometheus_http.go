package metrics

import (
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler serves the metrics in reg. Collection errors are logged and
// the remaining metrics are still served. The handler's own request counts
// are registered in reg as well.
func HTTPHandler(reg *prom.Registry, logger *slog.Logger) http.Handler {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	})
	return promhttp.InstrumentMetricHandler(reg, h)
}
