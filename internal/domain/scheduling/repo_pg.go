package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var pg = goqu.Dialect("postgres")

type appointmentRepoPG struct{ pool *pgxpool.Pool }

// NewAppointmentRepoPG stores the book in the appointment table. patient_id
// and doctor_id carry no foreign keys so removing a patient leaves its
// appointments in place.
func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

var apptCols = []interface{}{"id", "starts_at", "doctor_id", "patient_id", "visit_type"}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var vt string
	if err := row.Scan(&a.ID, &a.StartsAt, &a.DoctorID, &a.PatientID, &vt); err != nil {
		return nil, err
	}
	a.VisitType = VisitType(vt)
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	query, args, err := pg.Insert("appointment").Rows(goqu.Record{
		"starts_at":  a.StartsAt,
		"doctor_id":  a.DoctorID,
		"patient_id": a.PatientID,
		"visit_type": string(a.VisitType),
	}).Returning("id").Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&a.ID)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int) (*Appointment, error) {
	query, args, err := pg.From("appointment").Select(apptCols...).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	query, args, err := pg.Update("appointment").Set(goqu.Record{
		"starts_at":  a.StartsAt,
		"doctor_id":  a.DoctorID,
		"patient_id": a.PatientID,
		"visit_type": string(a.VisitType),
	}).Where(goqu.C("id").Eq(a.ID)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int) error {
	query, args, err := pg.Delete("appointment").Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context) ([]*Appointment, error) {
	query, args, err := pg.From("appointment").Select(apptCols...).Order(goqu.C("id").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
