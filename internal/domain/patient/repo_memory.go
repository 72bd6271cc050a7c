package patient

import (
	"context"
	"sync"
)

type repoMemory struct {
	mu       sync.RWMutex
	patients []*Patient
	nextID   int
}

// NewRepoMemory returns an in-process roster kept in insertion order.
func NewRepoMemory() Repository {
	return &repoMemory{nextID: 1}
}

func (r *repoMemory) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	if p.Records == nil {
		p.Records = []MedicalRecordEntry{}
	}
	r.patients = append(r.patients, p.Clone())
	return nil
}

func (r *repoMemory) indexOf(id int) int {
	for i, p := range r.patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *repoMemory) GetByID(_ context.Context, id int) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return r.patients[i].Clone(), nil
}

func (r *repoMemory) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.patients = append(r.patients[:i], r.patients[i+1:]...)
	return nil
}

func (r *repoMemory) List(_ context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *repoMemory) Mutate(_ context.Context, id int, fn func(p *Patient) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	work := r.patients[i].Clone()
	if err := fn(work); err != nil {
		return err
	}
	work.ID = id
	r.patients[i] = work
	return nil
}
