package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// ParseRequiredDate extracts and validates a YYYY-MM-DD query parameter.
// Returns the date and true on success, or false on error (after writing
// an error response).
func ParseRequiredDate(w http.ResponseWriter, r *http.Request, param string, logger *zap.Logger) (models.Date, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		writeBadRequest(w, "missing_"+param, "Query parameter "+param+" is required (YYYY-MM-DD)", logger)
		return models.Date{}, false
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		writeBadRequest(w, "invalid_"+param, "Query parameter "+param+" must be a date (YYYY-MM-DD)", logger)
		return models.Date{}, false
	}
	return d, true
}

// ParseOptionalDate is like ParseRequiredDate but returns a nil date when
// the parameter is absent.
func ParseOptionalDate(w http.ResponseWriter, r *http.Request, param string, logger *zap.Logger) (*models.Date, bool) {
	if r.URL.Query().Get(param) == "" {
		return nil, true
	}
	d, ok := ParseRequiredDate(w, r, param, logger)
	if !ok {
		return nil, false
	}
	return &d, true
}

func writeBadRequest(w http.ResponseWriter, code, message string, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusBadRequest, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
