package patient

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no patient has the requested id.
var ErrNotFound = errors.New("patient not found")

// Repository stores the patient roster. Implementations must assign strictly
// increasing ids that are never reused, and must run Mutate as a single
// critical section.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int) (*Patient, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]*Patient, error)
	// Mutate loads the patient, applies fn and stores the result. When fn
	// returns an error nothing is stored.
	Mutate(ctx context.Context, id int, fn func(p *Patient) error) error
}
