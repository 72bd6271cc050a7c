package reporting

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	engine *Engine
	loc    *time.Location
	now    func() time.Time
}

// NewHandler creates a reporting handler. Reference instants without an
// explicit offset are read in loc.
func NewHandler(engine *Engine, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{engine: engine, loc: loc, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/next-day", h.NextDay)
}

// ReferenceTime parses the "at" query value. RFC 3339 and YYYY-MM-DD are
// accepted; an empty value means now. An RFC 3339 value keeps its own offset,
// so "tomorrow" is the caller's tomorrow; loc only applies to dates and now.
func ReferenceTime(raw string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if raw == "" {
		return now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, loc)
}

// NextDay handles GET /reports/next-day?channel=EMAIL&at=2024-05-10.
func (h *Handler) NextDay(c echo.Context) error {
	ref, err := ReferenceTime(c.QueryParam("at"), h.loc, h.now)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "at must be RFC 3339 or YYYY-MM-DD")
	}
	r, err := h.engine.NextDay(c.Request().Context(), ref, c.QueryParam("channel"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !r.Valid {
		return c.JSON(http.StatusBadRequest, r)
	}
	return c.JSON(http.StatusOK, r)
}
