package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/runeset/elotrace/pkg/metrics"
)

// handleHealth answers liveness probes with the metrics registry dump;
// a 200 with a scrape body doubles as both.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
