package server

import (
	"net/http"

	"github.com/ahmethakanbesel/stockseries/internal/stock"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(svc *stock.Service) http.Handler {
	return newMux(svc)
}

func newMux(svc *stock.Service) http.Handler {
	h := &handler{svc: svc}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/sources", h.listSources)
	mux.HandleFunc("GET /api/v1/stocks/{symbol}/days", h.getDays)
	mux.HandleFunc("GET /api/v1/stocks/{symbol}/fields/{field}", h.getField)
	mux.HandleFunc("GET /api/v1/stocks/{symbol}/statistics", h.listStatistics)
	mux.HandleFunc("GET /api/v1/stocks/{symbol}/statistics/{name}", h.getStatistic)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
