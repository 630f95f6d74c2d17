// Package exporters serves the panel metrics over HTTP and the event bus.
package exporters

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler serves every promauto-registered collector. A collector that
// fails is logged and skipped so the panel counters are still scraped.
// Clients asking for OpenMetrics get it.
func HTTPHandler(logger *slog.Logger) http.Handler {
	return promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		handlerFor(prometheus.DefaultGatherer, logger))
}

func handlerFor(g prometheus.Gatherer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:          scrapeLog{logger},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
}

// scrapeLog adapts slog to promhttp.Logger.
type scrapeLog struct {
	logger *slog.Logger
}

func (l scrapeLog) Println(v ...any) {
	l.logger.Warn("Metrics scrape error", "error", fmt.Sprint(v...))
}
