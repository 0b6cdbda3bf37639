package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kennelos/kennel-etl/pkg/analytics"
	"github.com/kennelos/kennel-etl/pkg/models"
)

// maxWindowDays bounds the date range of an analytics request.
const maxWindowDays = 366

// AnalyticsReader loads the clean tables for a date range.
type AnalyticsReader interface {
	ListActivitiesBetween(ctx context.Context, from, to models.Date) ([]models.ActivityRecord, error)
	ListEnvironmentBetween(ctx context.Context, from, to models.Date) ([]models.EnvironmentReading, error)
	ListStaffLogsBetween(ctx context.Context, from, to models.Date) ([]models.StaffLog, error)
}

// AnalyticsHandler serves dashboard indicators computed over a window of
// days. The window defaults to the 30 days ending today.
type AnalyticsHandler struct {
	reader     AnalyticsReader
	thresholds analytics.Thresholds
	now        func() time.Time
	logger     *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the default thresholds.
func NewAnalyticsHandler(reader AnalyticsReader, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		reader:     reader,
		thresholds: analytics.DefaultThresholds(),
		now:        time.Now,
		logger:     logger,
	}
}

// RegisterRoutes registers the analytics routes on the given mux.
func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/analytics/pet-wellness", h.PetWellness)
	mux.HandleFunc("GET /api/analytics/environment", h.Environment)
	mux.HandleFunc("GET /api/analytics/operations", h.Operations)
}

// PetWellness handles GET /api/analytics/pet-wellness?from=&to=.
func (h *AnalyticsHandler) PetWellness(w http.ResponseWriter, r *http.Request) {
	window, ok := h.parseWindow(w, r)
	if !ok {
		return
	}
	activities, err := h.reader.ListActivitiesBetween(r.Context(), window.From, window.To)
	if err != nil {
		h.internalError(w, "load pet activities", err)
		return
	}
	h.write(w, analytics.PetWellness(window, activities, h.thresholds))
}

// Environment handles GET /api/analytics/environment?from=&to=.
func (h *AnalyticsHandler) Environment(w http.ResponseWriter, r *http.Request) {
	window, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	var readings []models.EnvironmentReading
	var activities []models.ActivityRecord
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		readings, err = h.reader.ListEnvironmentBetween(ctx, window.From, window.To)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = h.reader.ListActivitiesBetween(ctx, window.From, window.To)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(w, "load environment analytics", err)
		return
	}
	h.write(w, analytics.Environmental(window, readings, activities, h.thresholds))
}

// Operations handles GET /api/analytics/operations?from=&to=.
func (h *AnalyticsHandler) Operations(w http.ResponseWriter, r *http.Request) {
	window, ok := h.parseWindow(w, r)
	if !ok {
		return
	}

	var logs []models.StaffLog
	var activities []models.ActivityRecord
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		logs, err = h.reader.ListStaffLogsBetween(ctx, window.From, window.To)
		return err
	})
	g.Go(func() error {
		var err error
		activities, err = h.reader.ListActivitiesBetween(ctx, window.From, window.To)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(w, "load operations analytics", err)
		return
	}
	h.write(w, analytics.Operations(window, logs, activities, h.thresholds))
}

// parseWindow reads the optional from and to dates. A missing to is today;
// a missing from opens a 30 day window ending on to.
func (h *AnalyticsHandler) parseWindow(w http.ResponseWriter, r *http.Request) (analytics.Window, bool) {
	from, ok := ParseOptionalDate(w, r, "from", h.logger)
	if !ok {
		return analytics.Window{}, false
	}
	to, ok := ParseOptionalDate(w, r, "to", h.logger)
	if !ok {
		return analytics.Window{}, false
	}

	end := models.DateOf(h.now())
	if to != nil {
		end = *to
	}
	window := analytics.LastDays(end, analytics.MediumTermDays)
	if from != nil {
		window.From = *from
	}

	if window.To.Before(window.From) {
		writeBadRequest(w, "invalid_range", "from must not be after to", h.logger)
		return analytics.Window{}, false
	}
	if window.Days() > maxWindowDays {
		writeBadRequest(w, "invalid_range", "date range must not exceed 366 days", h.logger)
		return analytics.Window{}, false
	}
	return window, true
}

func (h *AnalyticsHandler) write(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *AnalyticsHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Failed to "+op, zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to "+op); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
