// Package clinical manages each patient's medical record history and derives
// per-doctor attendance from the appointment book.
package clinical

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/staff"
)

var (
	// ErrEntryNotFound is returned when the patient exists but has no entry
	// with the requested id.
	ErrEntryNotFound = errors.New("medical record entry not found")
	ErrMissingDoctor = errors.New("doctor is required")
)

// Registry is the part of the patient registry the ledger writes through.
type Registry interface {
	FindByID(ctx context.Context, id int) (*patient.Patient, error)
	Mutate(ctx context.Context, id int, fn func(p *patient.Patient) error) error
}

// EntryInput carries the free-text fields of a visit.
type EntryInput struct {
	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
}

type Service struct {
	registry Registry
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(registry Registry, logger zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		now:      time.Now,
		logger:   logger.With().Str("component", "medical-record-ledger").Logger(),
	}
}

// WithClock replaces the clock used to date new entries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddEntry appends a visit dated now to the patient's history.
func (s *Service) AddEntry(ctx context.Context, patientID int, doctor *staff.Doctor, in EntryInput) (*patient.MedicalRecordEntry, error) {
	if doctor == nil {
		return nil, ErrMissingDoctor
	}
	var added patient.MedicalRecordEntry
	err := s.registry.Mutate(ctx, patientID, func(p *patient.Patient) error {
		added = p.AddRecord(patient.MedicalRecordEntry{
			VisitDate:    s.now(),
			Symptoms:     in.Symptoms,
			Diagnosis:    in.Diagnosis,
			Prescription: in.Prescription,
			DoctorID:     doctor.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("patient_id", patientID).Int("entry_id", added.ID).Int("doctor_id", doctor.ID).Msg("record entry added")
	return &added, nil
}

// UpdateEntry overwrites the three free-text fields of an existing entry.
func (s *Service) UpdateEntry(ctx context.Context, patientID, entryID int, in EntryInput) error {
	return s.registry.Mutate(ctx, patientID, func(p *patient.Patient) error {
		e, ok := p.Record(entryID)
		if !ok {
			return ErrEntryNotFound
		}
		e.Symptoms = in.Symptoms
		e.Diagnosis = in.Diagnosis
		e.Prescription = in.Prescription
		return nil
	})
}

func (s *Service) RemoveEntry(ctx context.Context, patientID, entryID int) error {
	err := s.registry.Mutate(ctx, patientID, func(p *patient.Patient) error {
		if !p.RemoveRecord(entryID) {
			return ErrEntryNotFound
		}
		return nil
	})
	if err == nil {
		s.logger.Info().Int("patient_id", patientID).Int("entry_id", entryID).Msg("record entry removed")
	}
	return err
}

// ListHistory returns the entries oldest first.
func (s *Service) ListHistory(ctx context.Context, patientID int) ([]patient.MedicalRecordEntry, error) {
	p, err := s.registry.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return p.History(), nil
}
