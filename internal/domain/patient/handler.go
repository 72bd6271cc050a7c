package patient

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/httputil"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.RegisterPatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.RemovePatient)
	api.PUT("/patients/:id/health-profile", h.UpdateHealthProfile)
	api.DELETE("/patients/:id/health-profile", h.ClearHealthProfile)
}

type registerRequest struct {
	Name       string  `json:"name"`
	NationalID string  `json:"national_id"`
	BirthDate  string  `json:"birth_date"`
	Address    Address `json:"address"`
	Contact    Contact `json:"contact"`
	Insurance  string  `json:"insurance_type"`
}

type updateRequest struct {
	Name      string  `json:"name"`
	Address   Address `json:"address"`
	Contact   Contact `json:"contact"`
	Insurance string  `json:"insurance_type"`
}

func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	in := RegisterInput{
		Name:       req.Name,
		NationalID: req.NationalID,
		Address:    req.Address,
		Contact:    req.Contact,
	}
	if req.BirthDate != "" {
		bd, err := time.Parse(time.DateOnly, req.BirthDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		}
		in.BirthDate = bd
	}
	if req.Insurance != "" {
		it, err := ParseInsuranceType(req.Insurance)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Insurance = it
	}
	p, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.FindByID(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.Respond(items, pagination.FromContext(c)))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	in := UpdateInput{Name: req.Name, Address: req.Address, Contact: req.Contact}
	if req.Insurance != "" {
		it, err := ParseInsuranceType(req.Insurance)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Insurance = it
	}
	if err := h.svc.Update(c.Request().Context(), id, in); err != nil {
		return notFoundOr(err)
	}
	p, err := h.svc.FindByID(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) RemovePatient(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Remove(c.Request().Context(), id); err != nil {
		return notFoundOr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateHealthProfile(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	var hp HealthProfile
	if err := c.Bind(&hp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateHealthProfile(c.Request().Context(), id, hp); err != nil {
		return notFoundOr(err)
	}
	return c.JSON(http.StatusOK, hp)
}

func (h *Handler) ClearHealthProfile(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.ClearHealthProfile(c.Request().Context(), id); err != nil {
		return notFoundOr(err)
	}
	return c.NoContent(http.StatusNoContent)
}
