package notification

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/reporting"
)

// Handler exposes reminder dispatch over HTTP.
type Handler struct {
	engine     *reporting.Engine
	dispatcher *Dispatcher
	loc        *time.Location
	now        func() time.Time
}

func NewHandler(engine *reporting.Engine, dispatcher *Dispatcher, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{engine: engine, dispatcher: dispatcher, loc: loc, now: time.Now}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/reminders/dispatch", h.HandleDispatch)
}

type dispatchRequest struct {
	Channel string `json:"channel"`
	At      string `json:"at"`
}

type dispatchResponse struct {
	ReportID   string    `json:"report_id"`
	TargetDate string    `json:"target_date"`
	Outcomes   []Outcome `json:"outcomes"`
}

// HandleDispatch handles POST /reminders/dispatch.
func (h *Handler) HandleDispatch(c echo.Context) error {
	var req dispatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	ref, err := reporting.ReferenceTime(req.At, h.loc, h.now)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "at must be RFC 3339 or YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	r, err := h.engine.NextDay(ctx, ref, req.Channel)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !r.Valid {
		return c.JSON(http.StatusBadRequest, r)
	}
	outcomes := h.dispatcher.Dispatch(ctx, r.Channel, TargetsFromReport(r))
	return c.JSON(http.StatusOK, dispatchResponse{ReportID: r.ID, TargetDate: r.TargetDate, Outcomes: outcomes})
}
