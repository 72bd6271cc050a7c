package scheduling

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no appointment has the requested id.
var ErrNotFound = errors.New("appointment not found")

// AppointmentRepository is the appointment book's storage. Ids are assigned
// sequentially on Create and never reused; List returns creation order.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int) (*Appointment, error)
	// Update overwrites every field of the appointment with a.ID.
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*Appointment, error)
}
