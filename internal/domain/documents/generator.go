// Package documents renders printable clinical documents. Nothing here is
// persisted; each call returns text for display.
package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/staff"
)

const (
	NotFoundText       = "ERROR: Patient not found"
	DoctorNotFoundText = "ERROR: Doctor not found"
	LookupFailedText   = "ERROR: Patient lookup failed"
)

// PatientFinder resolves a patient id against the registry.
type PatientFinder interface {
	FindByID(ctx context.Context, id int) (*patient.Patient, error)
}

type Generator struct {
	patients PatientFinder
	now      func() time.Time
}

func NewGenerator(patients PatientFinder) *Generator {
	return &Generator{patients: patients, now: time.Now}
}

// WithClock replaces the clock that dates documents.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) today() string {
	return g.now().Format(time.DateOnly)
}

// resolve returns the failure text when the document cannot be produced.
func (g *Generator) resolve(ctx context.Context, patientID int, doctor *staff.Doctor) (*patient.Patient, string, bool) {
	p, err := g.patients.FindByID(ctx, patientID)
	if errors.Is(err, patient.ErrNotFound) {
		return nil, NotFoundText, false
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("patient_id", patientID).Msg("document patient lookup failed")
		return nil, LookupFailedText, false
	}
	if doctor == nil {
		return nil, DoctorNotFoundText, false
	}
	return p, "", true
}

func signature(d *staff.Doctor) string {
	return fmt.Sprintf("Signed: %s (License: %s)", d.Name, d.LicenseID)
}

func (g *Generator) Prescription(ctx context.Context, patientID int, doctor *staff.Doctor, text string) (string, bool) {
	p, msg, ok := g.resolve(ctx, patientID, doctor)
	if !ok {
		return msg, false
	}
	return fmt.Sprintf("--- Medical Prescription ---\n"+
		"Patient: %s\n"+
		"National ID: %s\n"+
		"Prescription: %s\n"+
		"Date: %s\n"+
		"%s",
		p.Name, p.NationalID, text, g.today(), signature(doctor)), true
}

func (g *Generator) MedicalLeave(ctx context.Context, patientID int, doctor *staff.Doctor, daysOff int) (string, bool) {
	p, msg, ok := g.resolve(ctx, patientID, doctor)
	if !ok {
		return msg, false
	}
	return fmt.Sprintf("--- Medical Leave Certificate ---\n"+
		"I certify for all due purposes that patient %s, national ID %s, requires %d day(s) off.\n\n"+
		"Date: %s\n"+
		"%s",
		p.Name, p.NationalID, daysOff, g.today(), signature(doctor)), true
}

func (g *Generator) CompanionDeclaration(ctx context.Context, patientID int, doctor *staff.Doctor, companionName string) (string, bool) {
	p, msg, ok := g.resolve(ctx, patientID, doctor)
	if !ok {
		return msg, false
	}
	today := g.today()
	return fmt.Sprintf("--- Companion Declaration ---\n"+
		"I declare for all due purposes that %s was at this facility on %s, accompanying patient %s.\n\n"+
		"Date: %s\n"+
		"%s",
		companionName, today, p.Name, today, signature(doctor)), true
}
