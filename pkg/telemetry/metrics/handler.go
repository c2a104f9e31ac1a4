package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	scrapeTimeout     = 10 * time.Second
	maxParallelScrape = 4
)

// Handler serves the collector's registry in the Prometheus exposition
// format, with OpenMetrics negotiated when the scraper asks for it. Scrapes
// are themselves counted under promhttp_metric_handler_requests_total.
// A failing collector drops its own series; the rest are still served.
func (c *Collector) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(c.registry, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics:   true,
		ErrorHandling:       promhttp.ContinueOnError,
		Registry:            c.registry,
		Timeout:             scrapeTimeout,
		MaxRequestsInFlight: maxParallelScrape,
	}))
}
