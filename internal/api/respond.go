package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/safar/storefront-api/internal/database"
	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type listEnvelope struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Data   any    `json:"data"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Status: statusError, Message: message})
}

func respondList(w http.ResponseWriter, count int, data any) {
	respondJSON(w, http.StatusOK, listEnvelope{Status: statusSuccess, Count: count, Data: data})
}

func respondCreated(w http.ResponseWriter, message string, data any) {
	respondJSON(w, http.StatusCreated, envelope{Status: statusSuccess, Message: message, Data: data})
}

// fail maps an error from the store onto the HTTP taxonomy. Storage failures
// are logged in full and answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, failure string) {
	var verr *database.ValidationError
	var serr *database.StorageError

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "Resource not found")
	case errors.As(err, &serr):
		h.logger.Error(failure,
			zap.Error(serr.Err),
			zap.String("op", serr.Op),
			zap.Stringer("class", serr.Class),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		respondError(w, http.StatusInternalServerError, failure)
	default:
		h.logger.Error(failure, zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		respondError(w, http.StatusInternalServerError, failure)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// idParam reads the numeric {id} route parameter. The route regexp already
// rejects non-digits; ok is false only when the value overflows int64.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Resource not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
