package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/staff"
)

type mockPatients struct{ mock.Mock }

func (m *mockPatients) FindByID(ctx context.Context, id int) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*patient.Patient)
	return p, args.Error(1)
}

type stubDoctors map[int]*staff.Doctor

func (s stubDoctors) FindDoctor(id int) (*staff.Doctor, bool) {
	d, ok := s[id]
	return d, ok
}

var docDate = time.Date(2024, 5, 10, 16, 45, 0, 0, time.UTC)

func grey() *staff.Doctor {
	return &staff.Doctor{Employee: staff.Employee{ID: 2, Name: "Dra. Grey"}, LicenseID: "CRM/PR 54321", Specialty: "Cardiologia"}
}

func joao() *patient.Patient {
	p := patient.New("João Silva", "123.456.789-00", time.Date(1980, 1, 15, 0, 0, 0, 0, time.UTC),
		patient.Address{}, patient.Contact{}, patient.SelfPay)
	p.ID = 1
	return p
}

func newGenerator(t *testing.T) (*Generator, *mockPatients) {
	t.Helper()
	m := new(mockPatients)
	m.On("FindByID", mock.Anything, 1).Return(joao(), nil)
	m.On("FindByID", mock.Anything, mock.Anything).Return(nil, patient.ErrNotFound)
	return NewGenerator(m).WithClock(func() time.Time { return docDate }), m
}

func TestPrescription(t *testing.T) {
	g, _ := newGenerator(t)
	text, ok := g.Prescription(context.Background(), 1, grey(), "Amoxicilina 500mg 8/8h")
	require.True(t, ok)
	assert.Equal(t, "--- Medical Prescription ---\n"+
		"Patient: João Silva\n"+
		"National ID: 123.456.789-00\n"+
		"Prescription: Amoxicilina 500mg 8/8h\n"+
		"Date: 2024-05-10\n"+
		"Signed: Dra. Grey (License: CRM/PR 54321)", text)
}

func TestMedicalLeave(t *testing.T) {
	g, _ := newGenerator(t)
	text, ok := g.MedicalLeave(context.Background(), 1, grey(), 3)
	require.True(t, ok)
	assert.Contains(t, text, "patient João Silva, national ID 123.456.789-00, requires 3 day(s) off.")
	assert.Contains(t, text, "Date: 2024-05-10")
	assert.True(t, strings.HasSuffix(text, "Signed: Dra. Grey (License: CRM/PR 54321)"))
}

func TestCompanionDeclaration(t *testing.T) {
	g, _ := newGenerator(t)
	text, ok := g.CompanionDeclaration(context.Background(), 1, grey(), "Maria Silva")
	require.True(t, ok)
	assert.Contains(t, text, "Maria Silva was at this facility on 2024-05-10, accompanying patient João Silva.")
}

func TestDocuments_PatientNotFound(t *testing.T) {
	g, m := newGenerator(t)
	ctx := context.Background()

	text, ok := g.Prescription(ctx, 99, grey(), "x")
	assert.False(t, ok)
	assert.Equal(t, NotFoundText, text)

	text, ok = g.MedicalLeave(ctx, 99, grey(), 2)
	assert.False(t, ok)
	assert.Equal(t, NotFoundText, text)

	text, ok = g.CompanionDeclaration(ctx, 99, grey(), "y")
	assert.False(t, ok)
	assert.Equal(t, NotFoundText, text)

	m.AssertNumberOfCalls(t, "FindByID", 3)
}

func TestDocuments_StorageErrorIsNotReportedAsMissing(t *testing.T) {
	m := new(mockPatients)
	m.On("FindByID", mock.Anything, 1).Return(nil, errors.New("db down"))
	g := NewGenerator(m).WithClock(func() time.Time { return docDate })

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	text, ok := g.Prescription(ctx, 1, grey(), "x")
	assert.False(t, ok)
	assert.Equal(t, LookupFailedText, text)
	assert.NotEqual(t, NotFoundText, text)
	assert.Contains(t, logs.String(), "db down")
	assert.Contains(t, logs.String(), `"patient_id":1`)
}

func TestHandler_Prescription_StorageError(t *testing.T) {
	m := new(mockPatients)
	m.On("FindByID", mock.Anything, 1).Return(nil, errors.New("db down"))
	h := NewHandler(NewGenerator(m), stubDoctors{2: grey()})
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patient_id":1,"doctor_id":2,"prescription":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Prescription(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), LookupFailedText)
}

func TestDocuments_NilDoctor(t *testing.T) {
	g, _ := newGenerator(t)
	text, ok := g.Prescription(context.Background(), 1, nil, "x")
	assert.False(t, ok)
	assert.Equal(t, DoctorNotFoundText, text)
}

func TestHandler_Prescription(t *testing.T) {
	g, _ := newGenerator(t)
	h := NewHandler(g, stubDoctors{2: grey()})
	e := echo.New()

	body := `{"patient_id":1,"doctor_id":2,"prescription":"Dipirona"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Prescription(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp documentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Contains(t, resp.Text, "Prescription: Dipirona")
}

func TestHandler_MedicalLeave_PatientNotFound(t *testing.T) {
	g, _ := newGenerator(t)
	h := NewHandler(g, stubDoctors{2: grey()})
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patient_id":5,"doctor_id":2,"days_off":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.MedicalLeave(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), NotFoundText)
}

func TestHandler_UnknownDoctor(t *testing.T) {
	g, _ := newGenerator(t)
	h := NewHandler(g, stubDoctors{})
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patient_id":1,"doctor_id":9}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.CompanionDeclaration(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Code)
}
