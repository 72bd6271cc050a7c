package main

import (
	"context"
	"fmt"
	"time"

	"github.com/clinic/clinic/internal/domain/patient"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/domain/staff"
)

// seedDemo registers two patients and books one visit later today plus two
// for tomorrow, enough to exercise the reminder report on both channels.
func seedDemo(ctx context.Context, a *app, now time.Time) error {
	joao, err := a.patients.Register(ctx, patient.RegisterInput{
		Name:       "João Silva",
		NationalID: "12345678900",
		BirthDate:  time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		Address:    patient.Address{Street: "Rua A", Number: "100", Neighborhood: "Centro", City: "Maringa", State: "PR"},
		Contact:    patient.Contact{Phone: "44998765432", Email: "joao.silva@email.com"},
		Insurance:  patient.InsurancePlan,
	})
	if err != nil {
		return err
	}
	maria, err := a.patients.Register(ctx, patient.RegisterInput{
		Name:       "Maria Oliveira",
		NationalID: "09876543211",
		BirthDate:  time.Date(1985, 10, 20, 0, 0, 0, 0, time.UTC),
		Address:    patient.Address{Street: "Av. Brasil", Number: "50", Complement: "Apto 101", Neighborhood: "Zona 7", City: "Maringa", State: "PR"},
		Contact:    patient.Contact{Phone: "44991234567"},
		Insurance:  patient.SelfPay,
	})
	if err != nil {
		return err
	}

	doctors := a.roster.Doctors()
	if len(doctors) < 2 {
		return fmt.Errorf("demo seed needs two doctors, roster has %d", len(doctors))
	}
	first, second := &doctors[0], &doctors[1]

	y, m, d := now.Date()
	tomorrowAt := func(hour int) time.Time { return time.Date(y, m, d+1, hour, 0, 0, 0, now.Location()) }

	bookings := []struct {
		at time.Time
		p  *patient.Patient
		vt scheduling.VisitType
		dr *staff.Doctor
	}{
		{now.Add(time.Hour), joao, scheduling.Normal, first},
		{tomorrowAt(9), maria, scheduling.FollowUp, second},
		{tomorrowAt(10), joao, scheduling.Normal, first},
	}
	for _, b := range bookings {
		if _, err := a.book.Schedule(ctx, b.at, b.dr, b.p, b.vt); err != nil {
			return err
		}
	}
	a.logger.Info().Int("patients", 2).Int("appointments", len(bookings)).Msg("demo data loaded")
	return nil
}
