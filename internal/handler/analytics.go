package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
)

// StatsReader computes the dashboard figures.
type StatsReader interface {
	Daily(ctx context.Context, day time.Time) (model.DailyStats, error)
	Weekly(ctx context.Context, day time.Time) ([]model.DayStats, error)
}

type AnalyticsHandler struct {
	Stats StatsReader
	Now   func() time.Time
}

func NewAnalyticsHandler(stats StatsReader) *AnalyticsHandler {
	return &AnalyticsHandler{Stats: stats, Now: time.Now}
}

// day reads ?date=YYYY-MM-DD, defaulting to today.
func (h *AnalyticsHandler) day(c echo.Context) (time.Time, bool) {
	raw := c.QueryParam("date")
	if raw == "" {
		return h.Now(), true
	}
	d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	return d, err == nil
}

func (h *AnalyticsHandler) Daily(c echo.Context) error {
	day, ok := h.day(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	stats, err := h.Stats.Daily(ctx, day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Weekly returns seven days ending on the requested date.
func (h *AnalyticsHandler) Weekly(c echo.Context) error {
	day, ok := h.day(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	week, err := h.Stats.Weekly(ctx, day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, week)
}
