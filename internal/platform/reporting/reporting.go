// Package reporting derives the appointments that need a reminder on the day
// before they happen.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/scheduling"
)

// Channel is the contact medium a reminder goes out on.
type Channel string

const (
	Email Channel = "EMAIL"
	Phone Channel = "PHONE"
)

// ParseChannel accepts EMAIL, PHONE and TELEFONE in any case.
func ParseChannel(s string) (Channel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EMAIL":
		return Email, true
	case "PHONE", "TELEFONE":
		return Phone, true
	}
	return "", false
}

// Destination is the contact value used for this channel, empty when the
// patient has none.
func (c Channel) Destination(ct patient.Contact) string {
	switch c {
	case Email:
		return ct.Email
	case Phone:
		return ct.Phone
	}
	return ""
}

// Entry is one appointment in a report together with its resolved patient.
type Entry struct {
	Appointment *scheduling.Appointment `json:"appointment"`
	Patient     *patient.Patient        `json:"patient"`
}

// Report is the result of NextDay. Valid is false when the requested channel
// was not recognised; Entries is then empty.
type Report struct {
	ID          string    `json:"id"`
	Channel     Channel   `json:"channel,omitempty"`
	Reference   time.Time `json:"reference"`
	TargetDate  string    `json:"target_date"`
	Valid       bool      `json:"valid"`
	Entries     []Entry   `json:"entries"`
	GeneratedAt time.Time `json:"generated_at"`
}

type AppointmentLister interface {
	ListAll(ctx context.Context) ([]*scheduling.Appointment, error)
}

type PatientLookup interface {
	FindByID(ctx context.Context, id int) (*patient.Patient, error)
}

type Engine struct {
	appointments AppointmentLister
	patients     PatientLookup
	logger       zerolog.Logger
}

func NewEngine(appointments AppointmentLister, patients PatientLookup, logger zerolog.Logger) *Engine {
	return &Engine{
		appointments: appointments,
		patients:     patients,
		logger:       logger.With().Str("component", "reporting").Logger(),
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextDay lists, in book order, the appointments falling on the calendar day
// after reference (in reference's location) whose patient can be reached on
// channel.
func (e *Engine) NextDay(ctx context.Context, reference time.Time, channel string) (*Report, error) {
	loc := reference.Location()
	y, m, d := reference.Date()
	target := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	r := &Report{
		ID:          uuid.New().String(),
		Reference:   reference,
		TargetDate:  target.Format(time.DateOnly),
		Entries:     []Entry{},
		GeneratedAt: time.Now().UTC(),
	}
	ch, ok := ParseChannel(channel)
	if !ok {
		e.logger.Warn().Str("channel", channel).Msg("report requested for unknown channel")
		return r, nil
	}
	r.Channel = ch
	r.Valid = true

	appts, err := e.appointments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	for _, a := range appts {
		if !sameDate(a.StartsAt.In(loc), target) {
			continue
		}
		p, err := e.patients.FindByID(ctx, a.PatientID)
		if errors.Is(err, patient.ErrNotFound) {
			e.logger.Warn().Int("appointment_id", a.ID).Int("patient_id", a.PatientID).Msg("appointment references removed patient")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve patient %d: %w", a.PatientID, err)
		}
		if ch.Destination(p.Contact) == "" {
			continue
		}
		r.Entries = append(r.Entries, Entry{Appointment: a, Patient: p})
	}
	e.logger.Info().
		Str("report_id", r.ID).
		Str("channel", string(ch)).
		Str("target_date", r.TargetDate).
		Int("entries", len(r.Entries)).
		Msg("next-day report built")
	return r, nil
}
