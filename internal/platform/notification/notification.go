// Package notification turns next-day reports into reminder outcomes and
// hands deliverable ones to a transport.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/reporting"
)

// ---------------------------------------------------------------------------
// Outcomes
// ---------------------------------------------------------------------------

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// ReminderTarget is what the dispatcher needs to know about one appointment.
type ReminderTarget struct {
	AppointmentID int       `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Destination   string    `json:"destination"`
	StartsAt      time.Time `json:"starts_at"`
}

// Outcome records the decision taken for one target. TransportError is set
// when the decision was to send but the transport rejected the message.
type Outcome struct {
	ID             string            `json:"id"`
	AppointmentID  int               `json:"appointment_id"`
	Channel        reporting.Channel `json:"channel"`
	Status         Status            `json:"status"`
	Destination    string            `json:"destination,omitempty"`
	Message        string            `json:"message,omitempty"`
	PatientName    string            `json:"patient_name,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	TransportError string            `json:"transport_error,omitempty"`
}

// ReminderMessage is the text sent for an appointment.
func ReminderMessage(startsAt time.Time) string {
	return "Appointment scheduled for tomorrow at " + startsAt.Format("15:04")
}

// TargetsFromReport maps report entries to reminder targets in report order.
// Start times are expressed in the report's reference location.
func TargetsFromReport(r *reporting.Report) []ReminderTarget {
	loc := r.Reference.Location()
	out := make([]ReminderTarget, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, ReminderTarget{
			AppointmentID: e.Appointment.ID,
			PatientName:   e.Patient.Name,
			Destination:   r.Channel.Destination(e.Patient.Contact),
			StartsAt:      e.Appointment.StartsAt.In(loc),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Transports
// ---------------------------------------------------------------------------

// Transport delivers a single message. Implementations must be safe for
// concurrent use.
type Transport interface {
	Deliver(ctx context.Context, channel reporting.Channel, destination, message string) error
}

// LogTransport writes each message to the log instead of sending it.
type LogTransport struct {
	logger zerolog.Logger
}

func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{logger: logger.With().Str("transport", "log").Logger()}
}

func (t *LogTransport) Deliver(_ context.Context, channel reporting.Channel, destination, message string) error {
	t.logger.Info().
		Str("channel", string(channel)).
		Str("destination", destination).
		Str("message", message).
		Msg("reminder delivered")
	return nil
}

// Delivery records a single call to RecordingTransport.Deliver.
type Delivery struct {
	Channel     reporting.Channel
	Destination string
	Message     string
}

// RecordingTransport keeps every delivery in memory and optionally fails.
type RecordingTransport struct {
	mu         sync.Mutex
	calls      []Delivery
	ShouldFail bool
	FailError  string
}

func (m *RecordingTransport) Deliver(_ context.Context, channel reporting.Channel, destination, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Delivery{Channel: channel, Destination: destination, Message: message})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded deliveries.
func (m *RecordingTransport) Calls() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, len(m.calls))
	copy(out, m.calls)
	return out
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

type Dispatcher struct {
	transport Transport
	logger    zerolog.Logger
}

func NewDispatcher(transport Transport, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{transport: transport, logger: logger.With().Str("component", "dispatcher").Logger()}
}

// Dispatch decides, for each target in order, whether a reminder goes out.
// Transport failures are recorded on the outcome and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, channel reporting.Channel, targets []ReminderTarget) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))
	for _, t := range targets {
		o := Outcome{
			ID:            uuid.New().String(),
			AppointmentID: t.AppointmentID,
			Channel:       channel,
		}
		if t.Destination == "" {
			o.Status = StatusFailed
			o.PatientName = t.PatientName
			o.Reason = fmt.Sprintf("no %s on file for %s", channelNoun(channel), t.PatientName)
			d.logger.Warn().Int("appointment_id", t.AppointmentID).Str("patient", t.PatientName).Msg("reminder not sent")
			outcomes = append(outcomes, o)
			continue
		}
		o.Status = StatusSent
		o.Destination = t.Destination
		o.Message = ReminderMessage(t.StartsAt)
		if err := d.transport.Deliver(ctx, channel, o.Destination, o.Message); err != nil {
			o.TransportError = err.Error()
			d.logger.Error().Err(err).Int("appointment_id", t.AppointmentID).Msg("transport rejected reminder")
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func channelNoun(c reporting.Channel) string {
	if c == reporting.Phone {
		return "phone"
	}
	return "email"
}
