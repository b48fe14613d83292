package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports live counters, such as the websocket hub's.
type StatsProvider interface {
	Stats() map[string]int64
}

// MetricsHandler serves the Prometheus scrape endpoint and live stream stats
type MetricsHandler struct {
	scrape http.Handler
	stream StatsProvider
}

// NewMetricsHandler creates a metrics handler. A nil scrape handler serves
// the default Prometheus registry.
func NewMetricsHandler(scrape http.Handler, stream StatsProvider) *MetricsHandler {
	if scrape == nil {
		scrape = promhttp.Handler()
	}
	return &MetricsHandler{scrape: scrape, stream: stream}
}

// Prometheus returns the scrape handler mounted at /metrics
func (h *MetricsHandler) Prometheus() http.Handler {
	return h.scrape
}

// Routes sets up the stats routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/websocket", h.GetStreamStats)
	return r
}

// GetStreamStats handles GET /api/metrics/websocket
func (h *MetricsHandler) GetStreamStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int64{}
	if h.stream != nil {
		stats = h.stream.Stats()
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}
