package api

import (
	"net/http"

	"github.com/safar/storefront-api/internal/store"
	"go.uber.org/zap"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  statusSuccess,
		"message": "Storefront API is running",
		"version": apiVersion,
		"endpoints": map[string]string{
			"health":   "/health",
			"db_check": "/db-check",
			"metrics":  "/metrics",
			"users":    "/api/users",
			"products": "/api/products",
			"orders":   "/api/orders",
		},
	})
}

// health is a liveness probe only; it never touches the database.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"service":  serviceName,
		"database": "connected",
	})
}

func (h *Handler) dbCheck(w http.ResponseWriter, r *http.Request) {
	stats, err := store.CheckDatabase(r.Context(), h.db)
	if err != nil {
		h.logger.Error("database check failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Database connection failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     statusSuccess,
		"message":    "Database connection successful",
		"statistics": stats,
	})
}
