package scheduling

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/staff"
	"github.com/clinic/clinic/internal/platform/httputil"
	"github.com/clinic/clinic/pkg/pagination"
)

// PatientFinder resolves a patient id against the registry.
type PatientFinder interface {
	FindByID(ctx context.Context, id int) (*patient.Patient, error)
}

// DoctorFinder resolves a doctor id against the roster.
type DoctorFinder interface {
	FindDoctor(id int) (*staff.Doctor, bool)
}

type Handler struct {
	svc      *Service
	patients PatientFinder
	doctors  DoctorFinder
}

func NewHandler(svc *Service, patients PatientFinder, doctors DoctorFinder) *Handler {
	return &Handler{svc: svc, patients: patients, doctors: doctors}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.ScheduleAppointment)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.CancelAppointment)
}

type scheduleRequest struct {
	StartsAt  time.Time `json:"starts_at"`
	DoctorID  int       `json:"doctor_id"`
	PatientID int       `json:"patient_id"`
	VisitType string    `json:"visit_type"`
}

// resolve parses the visit type and looks up both references. Unknown
// references are a 422.
func (h *Handler) resolve(c echo.Context, req scheduleRequest) (*staff.Doctor, *patient.Patient, VisitType, error) {
	vt := Normal
	if req.VisitType != "" {
		parsed, err := ParseVisitType(req.VisitType)
		if err != nil {
			return nil, nil, "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		vt = parsed
	}
	d, ok := h.doctors.FindDoctor(req.DoctorID)
	if !ok {
		return nil, nil, "", echo.NewHTTPError(http.StatusUnprocessableEntity, "doctor not found")
	}
	p, err := h.patients.FindByID(c.Request().Context(), req.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, nil, "", echo.NewHTTPError(http.StatusUnprocessableEntity, "patient not found")
		}
		return nil, nil, "", echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return d, p, vt, nil
}

func (h *Handler) ScheduleAppointment(c echo.Context) error {
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, p, vt, err := h.resolve(c, req)
	if err != nil {
		return err
	}
	a, err := h.svc.Schedule(c.Request().Context(), req.StartsAt, d, p, vt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, p, vt, err := h.resolve(c, req)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.svc.Update(ctx, id, req.StartsAt, d, p, vt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.FindByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.FindByID(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.Respond(items, pagination.FromContext(c)))
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Cancel(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
