package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes. A nil metrics handler leaves /metrics unrouted.
func SetupRoutes(handler *Handler, metrics http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}

	// Portfolio routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")
	api.HandleFunc("/portfolio/refresh", handler.GetPortfolio).Methods("POST")
	api.HandleFunc("/positions", handler.AddPosition).Methods("POST")

	return r
}
