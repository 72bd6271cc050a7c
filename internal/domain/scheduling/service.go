package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/staff"
)

// ErrMissingReference is returned when Schedule is called without a resolved
// doctor or patient.
var ErrMissingReference = errors.New("doctor and patient are required")

// Service is the appointment book.
type Service struct {
	appointments AppointmentRepository
	logger       zerolog.Logger
}

func NewService(appt AppointmentRepository, logger zerolog.Logger) *Service {
	return &Service{appointments: appt, logger: logger.With().Str("component", "appointment-book").Logger()}
}

// Schedule books a visit. The caller is responsible for having looked up the
// doctor and the patient; no double-booking check is made.
func (s *Service) Schedule(ctx context.Context, startsAt time.Time, d *staff.Doctor, p *patient.Patient, vt VisitType) (*Appointment, error) {
	if d == nil || p == nil {
		return nil, ErrMissingReference
	}
	if startsAt.IsZero() {
		return nil, fmt.Errorf("starts_at is required")
	}
	if vt == "" {
		vt = Normal
	}
	if !vt.Valid() {
		return nil, fmt.Errorf("invalid visit type: %s", vt)
	}
	a := &Appointment{StartsAt: startsAt, DoctorID: d.ID, PatientID: p.ID, VisitType: vt}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	s.logger.Info().
		Int("appointment_id", a.ID).
		Int("doctor_id", a.DoctorID).
		Int("patient_id", a.PatientID).
		Time("starts_at", a.StartsAt).
		Msg("appointment scheduled")
	return a, nil
}

// Update reschedules an existing appointment, replacing its time, doctor,
// patient and visit type. ErrNotFound when absent.
func (s *Service) Update(ctx context.Context, id int, startsAt time.Time, d *staff.Doctor, p *patient.Patient, vt VisitType) error {
	if d == nil || p == nil {
		return ErrMissingReference
	}
	if startsAt.IsZero() {
		return fmt.Errorf("starts_at is required")
	}
	if vt == "" {
		vt = Normal
	}
	if !vt.Valid() {
		return fmt.Errorf("invalid visit type: %s", vt)
	}
	a := &Appointment{ID: id, StartsAt: startsAt, DoctorID: d.ID, PatientID: p.ID, VisitType: vt}
	if err := s.appointments.Update(ctx, a); err != nil {
		return err
	}
	s.logger.Info().
		Int("appointment_id", id).
		Int("doctor_id", a.DoctorID).
		Int("patient_id", a.PatientID).
		Time("starts_at", a.StartsAt).
		Msg("appointment updated")
	return nil
}

// Cancel removes the appointment. ErrNotFound when absent.
func (s *Service) Cancel(ctx context.Context, id int) error {
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int("appointment_id", id).Msg("appointment cancelled")
	return nil
}

func (s *Service) FindByID(ctx context.Context, id int) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// ListAll returns the book in creation order.
func (s *Service) ListAll(ctx context.Context) ([]*Appointment, error) {
	return s.appointments.List(ctx)
}
