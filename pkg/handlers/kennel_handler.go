package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// KennelReader is the read side of the kennel store.
type KennelReader interface {
	ListDailySummaries(ctx context.Context, from, to *models.Date) ([]models.DailySummary, error)
	ListActivities(ctx context.Context, date models.Date) ([]models.ActivityRecord, error)
	ListEnvironment(ctx context.Context, date models.Date) ([]models.EnvironmentReading, error)
	ListStaffLogs(ctx context.Context, date models.Date) ([]models.StaffLog, error)
}

// KennelHandler serves the clean tables to dashboards.
type KennelHandler struct {
	reader KennelReader
	logger *zap.Logger
}

// NewKennelHandler creates a new KennelHandler.
func NewKennelHandler(reader KennelReader, logger *zap.Logger) *KennelHandler {
	return &KennelHandler{reader: reader, logger: logger}
}

// RegisterRoutes registers the kennel handler's routes on the given mux.
func (h *KennelHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/daily-summary", h.DailySummary)
	mux.HandleFunc("GET /api/pet-activities", h.PetActivities)
	mux.HandleFunc("GET /api/environment", h.Environment)
	mux.HandleFunc("GET /api/staff-logs", h.StaffLogs)
}

// DailySummary handles GET /api/daily-summary?from=&to=.
// Both bounds are optional and inclusive.
func (h *KennelHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	from, ok := ParseOptionalDate(w, r, "from", h.logger)
	if !ok {
		return
	}
	to, ok := ParseOptionalDate(w, r, "to", h.logger)
	if !ok {
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		writeBadRequest(w, "invalid_range", "from must not be after to", h.logger)
		return
	}

	summaries, err := h.reader.ListDailySummaries(r.Context(), from, to)
	if err != nil {
		h.internalError(w, "list daily summaries", err)
		return
	}
	h.writeList(w, newListResponse(summaries))
}

// PetActivities handles GET /api/pet-activities?date=.
func (h *KennelHandler) PetActivities(w http.ResponseWriter, r *http.Request) {
	date, ok := ParseRequiredDate(w, r, "date", h.logger)
	if !ok {
		return
	}
	activities, err := h.reader.ListActivities(r.Context(), date)
	if err != nil {
		h.internalError(w, "list pet activities", err)
		return
	}
	h.writeList(w, newListResponse(activities))
}

// Environment handles GET /api/environment?date=.
func (h *KennelHandler) Environment(w http.ResponseWriter, r *http.Request) {
	date, ok := ParseRequiredDate(w, r, "date", h.logger)
	if !ok {
		return
	}
	readings, err := h.reader.ListEnvironment(r.Context(), date)
	if err != nil {
		h.internalError(w, "list environment readings", err)
		return
	}
	h.writeList(w, newListResponse(readings))
}

// StaffLogs handles GET /api/staff-logs?date=.
func (h *KennelHandler) StaffLogs(w http.ResponseWriter, r *http.Request) {
	date, ok := ParseRequiredDate(w, r, "date", h.logger)
	if !ok {
		return
	}
	logs, err := h.reader.ListStaffLogs(r.Context(), date)
	if err != nil {
		h.internalError(w, "list staff logs", err)
		return
	}
	h.writeList(w, newListResponse(logs))
}

func (h *KennelHandler) writeList(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *KennelHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Failed to "+op, zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to "+op); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
