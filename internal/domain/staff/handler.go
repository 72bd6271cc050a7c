package staff

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/httputil"
)

type Handler struct {
	roster *Roster
}

func NewHandler(roster *Roster) *Handler {
	return &Handler{roster: roster}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/secretaries", h.ListSecretaries)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roster.Doctors())
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		return err
	}
	d, ok := h.roster.FindDoctor(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListSecretaries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roster.Secretaries())
}
