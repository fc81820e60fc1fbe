package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"etforacle/pkg/etforacle"
)

// NewRouter builds the HTTP API router. Request logs go through the core
// logger, or slog.Default when core is nil.
func NewRouter(core *etforacle.Core) http.Handler {
	logger := slog.Default()
	if core != nil && core.Logger() != nil {
		logger = core.Logger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	h := &handler{core: core}

	r.Get("/api/health", h.health)

	// Catalog
	r.Get("/api/markets", h.getMarkets)
	r.Get("/api/markets/{index}", h.getMarket)
	r.Get("/api/sectors", h.getSectors)
	r.Get("/api/performance", h.getPerformance)

	// Insights
	r.Post("/api/insights/select", h.selectMarket)
	r.Post("/api/sectors/{sector}/select", h.selectSector)
	r.Get("/api/insights/state", h.getInsightState)
	r.Get("/api/etfs/{ticker}/detail", h.getTickerDetail)

	// Operation logs
	r.Get("/api/operation-logs", h.getOperationLogs)

	return r
}

type handler struct {
	core *etforacle.Core
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
