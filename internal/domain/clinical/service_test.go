package clinical

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/domain/staff"
)

var fixedNow = time.Date(2024, 5, 10, 9, 15, 0, 0, time.UTC)

func house() *staff.Doctor {
	return &staff.Doctor{Employee: staff.Employee{ID: 1, Name: "Dr. House"}, LicenseID: "CRM/PR 12345", Specialty: "Clínico Geral"}
}

func newFixture(t *testing.T) (*Service, *patient.Service) {
	t.Helper()
	reg := patient.NewService(patient.NewRepoMemory(), zerolog.Nop())
	svc := NewService(reg, zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
	return svc, reg
}

func register(t *testing.T, reg *patient.Service, name string) *patient.Patient {
	t.Helper()
	p, err := reg.Register(context.Background(), patient.RegisterInput{Name: name})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return p
}

func TestAddEntry_PerPatientIDs(t *testing.T) {
	svc, reg := newFixture(t)
	ctx := context.Background()
	a := register(t, reg, "Ana")
	b := register(t, reg, "Bruno")

	for i := 1; i <= 2; i++ {
		e, err := svc.AddEntry(ctx, a.ID, house(), EntryInput{Symptoms: "febre"})
		if err != nil {
			t.Fatalf("AddEntry: %v", err)
		}
		if e.ID != i {
			t.Errorf("expected entry id %d, got %d", i, e.ID)
		}
	}
	e, err := svc.AddEntry(ctx, b.ID, house(), EntryInput{Symptoms: "tosse"})
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if e.ID != 1 {
		t.Errorf("second patient should start at 1, got %d", e.ID)
	}
	if !e.VisitDate.Equal(fixedNow) || e.DoctorID != 1 {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestAddEntry_UnknownPatient(t *testing.T) {
	svc, _ := newFixture(t)
	_, err := svc.AddEntry(context.Background(), 42, house(), EntryInput{})
	if !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestAddEntry_MissingDoctor(t *testing.T) {
	svc, reg := newFixture(t)
	p := register(t, reg, "Ana")
	if _, err := svc.AddEntry(context.Background(), p.ID, nil, EntryInput{}); !errors.Is(err, ErrMissingDoctor) {
		t.Errorf("expected ErrMissingDoctor, got %v", err)
	}
}

func TestUpdateEntry(t *testing.T) {
	svc, reg := newFixture(t)
	ctx := context.Background()
	p := register(t, reg, "Ana")
	e, _ := svc.AddEntry(ctx, p.ID, house(), EntryInput{Symptoms: "febre", Diagnosis: "gripe", Prescription: "repouso"})

	in := EntryInput{Symptoms: "febre alta", Diagnosis: "dengue", Prescription: "hidratação"}
	if err := svc.UpdateEntry(ctx, p.ID, e.ID, in); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	hist, _ := svc.ListHistory(ctx, p.ID)
	if len(hist) != 1 || hist[0].Diagnosis != "dengue" || hist[0].Prescription != "hidratação" {
		t.Errorf("unexpected history %+v", hist)
	}
	if !hist[0].VisitDate.Equal(fixedNow) {
		t.Errorf("visit date should be unchanged, got %s", hist[0].VisitDate)
	}

	if err := svc.UpdateEntry(ctx, p.ID, 99, in); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
	if err := svc.UpdateEntry(ctx, 99, e.ID, in); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestRemoveEntry_KeepsOrderAndCounter(t *testing.T) {
	svc, reg := newFixture(t)
	ctx := context.Background()
	p := register(t, reg, "Ana")
	for i := 0; i < 3; i++ {
		_, _ = svc.AddEntry(ctx, p.ID, house(), EntryInput{})
	}
	if err := svc.RemoveEntry(ctx, p.ID, 2); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	if err := svc.RemoveEntry(ctx, p.ID, 2); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound on second remove, got %v", err)
	}
	e, _ := svc.AddEntry(ctx, p.ID, house(), EntryInput{})
	if e.ID != 4 {
		t.Errorf("expected id 4, got %d", e.ID)
	}
	hist, _ := svc.ListHistory(ctx, p.ID)
	var ids []int
	for _, h := range hist {
		ids = append(ids, h.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 4 {
		t.Errorf("unexpected ids %v", ids)
	}
}

func TestListHistory_UnknownPatient(t *testing.T) {
	svc, _ := newFixture(t)
	if _, err := svc.ListHistory(context.Background(), 7); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestDistinctPatientsSeenInMonth(t *testing.T) {
	_, reg := newFixture(t)
	ctx := context.Background()
	ana := register(t, reg, "Ana")
	bruno := register(t, reg, "Bruno")
	gone := register(t, reg, "Carla")
	if err := reg.Remove(ctx, gone.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	may := func(day int) time.Time { return time.Date(2024, 5, day, 10, 0, 0, 0, time.UTC) }
	appts := []*scheduling.Appointment{
		{ID: 1, StartsAt: may(3), DoctorID: 1, PatientID: bruno.ID},
		{ID: 2, StartsAt: may(4), DoctorID: 1, PatientID: ana.ID},
		{ID: 3, StartsAt: may(5), DoctorID: 1, PatientID: bruno.ID},
		{ID: 4, StartsAt: may(6), DoctorID: 2, PatientID: ana.ID},
		{ID: 5, StartsAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), DoctorID: 1, PatientID: ana.ID},
		{ID: 6, StartsAt: time.Date(2023, 5, 4, 10, 0, 0, 0, time.UTC), DoctorID: 1, PatientID: ana.ID},
		{ID: 7, StartsAt: may(7), DoctorID: 1, PatientID: gone.ID},
	}

	got, err := DistinctPatientsSeenInMonth(ctx, reg, 1, time.May, 2024, appts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != bruno.ID || got[1].ID != ana.ID {
		t.Errorf("expected [Bruno Ana], got %+v", got)
	}

	none, err := DistinctPatientsSeenInMonth(ctx, reg, 3, time.May, 2024, appts)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil result, got %v, %v", none, err)
	}
}

func TestAddEntry_ConcurrentIDsAreUnique(t *testing.T) {
	svc, reg := newFixture(t)
	ctx := context.Background()
	p := register(t, reg, "João Silva")
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddEntry(ctx, p.ID, house(), EntryInput{Symptoms: "cough"}); err != nil {
				t.Errorf("AddEntry: %v", err)
			}
		}()
	}
	wg.Wait()

	history, err := svc.ListHistory(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(history) != n {
		t.Fatalf("expected %d entries, got %d", n, len(history))
	}
	seen := make(map[int]bool)
	for _, e := range history {
		if seen[e.ID] {
			t.Errorf("entry id %d assigned twice", e.ID)
		}
		seen[e.ID] = true
	}
	for id := 1; id <= n; id++ {
		if !seen[id] {
			t.Errorf("entry id %d missing", id)
		}
	}
}
