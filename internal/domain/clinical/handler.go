package clinical

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/domain/staff"
	"github.com/clinic/clinic/internal/platform/httputil"
)

type DoctorFinder interface {
	FindDoctor(id int) (*staff.Doctor, bool)
}

type AppointmentLister interface {
	ListAll(ctx context.Context) ([]*scheduling.Appointment, error)
}

type Handler struct {
	svc          *Service
	doctors      DoctorFinder
	appointments AppointmentLister
}

func NewHandler(svc *Service, doctors DoctorFinder, appointments AppointmentLister) *Handler {
	return &Handler{svc: svc, doctors: doctors, appointments: appointments}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/records", h.ListHistory)
	api.POST("/patients/:id/records", h.AddEntry)
	api.PUT("/patients/:id/records/:entryId", h.UpdateEntry)
	api.DELETE("/patients/:id/records/:entryId", h.RemoveEntry)
	api.GET("/doctors/:id/attendance", h.Attendance)
}

type addEntryRequest struct {
	DoctorID int `json:"doctor_id"`
	EntryInput
}

func mapError(err error) error {
	switch {
	case errors.Is(err, patient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	case errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record entry not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) AddEntry(c echo.Context) error {
	pid, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	var req addEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, ok := h.doctors.FindDoctor(req.DoctorID)
	if !ok {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "doctor not found")
	}
	e, err := h.svc.AddEntry(c.Request().Context(), pid, d, req.EntryInput)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) UpdateEntry(c echo.Context) error {
	pid, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	eid, err := httputil.ParseID(c, "entryId")
	if err != nil {
		return err
	}
	var in EntryInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateEntry(c.Request().Context(), pid, eid, in); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveEntry(c echo.Context) error {
	pid, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	eid, err := httputil.ParseID(c, "entryId")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveEntry(c.Request().Context(), pid, eid); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListHistory(c echo.Context) error {
	pid, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListHistory(c.Request().Context(), pid)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Attendance serves GET /doctors/:id/attendance?month=5&year=2024.
func (h *Handler) Attendance(c echo.Context) error {
	did, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	if _, ok := h.doctors.FindDoctor(did); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be 1-12")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	ctx := c.Request().Context()
	appts, err := h.appointments.ListAll(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	seen, err := DistinctPatientsSeenInMonth(ctx, h.svc.registry, did, time.Month(month), year, appts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, seen)
}
