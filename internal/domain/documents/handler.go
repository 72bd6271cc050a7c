package documents

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/domain/staff"
)

type DoctorFinder interface {
	FindDoctor(id int) (*staff.Doctor, bool)
}

type Handler struct {
	gen     *Generator
	doctors DoctorFinder
}

func NewHandler(gen *Generator, doctors DoctorFinder) *Handler {
	return &Handler{gen: gen, doctors: doctors}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/documents")
	g.POST("/prescription", h.Prescription)
	g.POST("/medical-leave", h.MedicalLeave)
	g.POST("/companion-declaration", h.CompanionDeclaration)
}

type documentRequest struct {
	PatientID     int    `json:"patient_id"`
	DoctorID      int    `json:"doctor_id"`
	Prescription  string `json:"prescription"`
	DaysOff       int    `json:"days_off"`
	CompanionName string `json:"companion_name"`
}

type documentResponse struct {
	Text string `json:"text"`
	OK   bool   `json:"ok"`
}

func (h *Handler) bind(c echo.Context) (*documentRequest, *staff.Doctor, error) {
	var req documentRequest
	if err := c.Bind(&req); err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, ok := h.doctors.FindDoctor(req.DoctorID)
	if !ok {
		return nil, nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "doctor not found")
	}
	return &req, d, nil
}

func respond(c echo.Context, text string, ok bool) error {
	status := http.StatusOK
	switch {
	case ok:
	case text == LookupFailedText:
		status = http.StatusInternalServerError
	default:
		status = http.StatusNotFound
	}
	return c.JSON(status, documentResponse{Text: text, OK: ok})
}

func (h *Handler) Prescription(c echo.Context) error {
	req, d, err := h.bind(c)
	if err != nil {
		return err
	}
	text, ok := h.gen.Prescription(c.Request().Context(), req.PatientID, d, req.Prescription)
	return respond(c, text, ok)
}

func (h *Handler) MedicalLeave(c echo.Context) error {
	req, d, err := h.bind(c)
	if err != nil {
		return err
	}
	if req.DaysOff < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "days_off must not be negative")
	}
	text, ok := h.gen.MedicalLeave(c.Request().Context(), req.PatientID, d, req.DaysOff)
	return respond(c, text, ok)
}

func (h *Handler) CompanionDeclaration(c echo.Context) error {
	req, d, err := h.bind(c)
	if err != nil {
		return err
	}
	text, ok := h.gen.CompanionDeclaration(c.Request().Context(), req.PatientID, d, req.CompanionName)
	return respond(c, text, ok)
}
