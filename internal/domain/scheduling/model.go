package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// VisitType classifies an appointment and fixes its nominal duration.
type VisitType string

const (
	Normal   VisitType = "NORMAL"
	FollowUp VisitType = "FOLLOW_UP"
)

// Duration is the nominal length of a visit of this type.
func (v VisitType) Duration() time.Duration {
	switch v {
	case Normal:
		return 60 * time.Minute
	case FollowUp:
		return 30 * time.Minute
	}
	return 0
}

func (v VisitType) Valid() bool { return v == Normal || v == FollowUp }

// ParseVisitType accepts NORMAL and FOLLOW_UP case-insensitively.
func ParseVisitType(s string) (VisitType, error) {
	v := VisitType(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("invalid visit type: %q", s)
	}
	return v, nil
}

// Appointment links a patient and a doctor at a point in time. Both are held
// by id; the caller resolves them before scheduling.
type Appointment struct {
	ID        int       `json:"id"`
	StartsAt  time.Time `json:"starts_at"`
	DoctorID  int       `json:"doctor_id"`
	PatientID int       `json:"patient_id"`
	VisitType VisitType `json:"visit_type"`
}

// EndsAt is StartsAt plus the nominal visit duration.
func (a *Appointment) EndsAt() time.Time {
	return a.StartsAt.Add(a.VisitType.Duration())
}
