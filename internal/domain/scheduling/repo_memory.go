package scheduling

import (
	"context"
	"sync"
)

type appointmentRepoMemory struct {
	mu     sync.RWMutex
	items  []Appointment
	nextID int
}

// NewAppointmentRepoMemory keeps the book in process memory.
func NewAppointmentRepoMemory() AppointmentRepository {
	return &appointmentRepoMemory{nextID: 1}
}

func (r *appointmentRepoMemory) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	r.items = append(r.items, *a)
	return nil
}

func (r *appointmentRepoMemory) GetByID(_ context.Context, id int) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.items {
		if r.items[i].ID == id {
			a := r.items[i]
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (r *appointmentRepoMemory) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == a.ID {
			r.items[i] = *a
			return nil
		}
	}
	return ErrNotFound
}

func (r *appointmentRepoMemory) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *appointmentRepoMemory) List(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.items))
	for i := range r.items {
		a := r.items[i]
		out = append(out, &a)
	}
	return out, nil
}
