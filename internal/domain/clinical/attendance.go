package clinical

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/scheduling"
)

// PatientLookup resolves the patient an appointment points at.
type PatientLookup interface {
	FindByID(ctx context.Context, id int) (*patient.Patient, error)
}

// DistinctPatientsSeenInMonth returns the patients the doctor had appointments
// with in the given month, first occurrence first. Appointments whose patient
// was removed from the registry are skipped.
func DistinctPatientsSeenInMonth(ctx context.Context, lookup PatientLookup, doctorID int, month time.Month, year int, appointments []*scheduling.Appointment) ([]*patient.Patient, error) {
	seen := make(map[int]struct{})
	out := []*patient.Patient{}
	for _, a := range appointments {
		if a.DoctorID != doctorID || a.StartsAt.Year() != year || a.StartsAt.Month() != month {
			continue
		}
		if _, dup := seen[a.PatientID]; dup {
			continue
		}
		p, err := lookup.FindByID(ctx, a.PatientID)
		if errors.Is(err, patient.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Int("appointment_id", a.ID).Int("patient_id", a.PatientID).Msg("appointment references removed patient")
			continue
		}
		if err != nil {
			return nil, err
		}
		seen[a.PatientID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}
