package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

var pg = goqu.Dialect("postgres")

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG stores patients in the patient and medical_record tables.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

var patientCols = []interface{}{
	"id", "name", "national_id", "birth_date",
	"street", "number", "complement", "neighborhood", "city", "state",
	"phone", "email", "insurance_type",
	"smoker", "drinker", "high_cholesterol", "diabetic",
	"cardiac_conditions", "past_surgeries", "allergies", "next_record_id",
}

func patientRecord(p *Patient) goqu.Record {
	return goqu.Record{
		"name":               p.Name,
		"national_id":        p.NationalID,
		"birth_date":         p.BirthDate,
		"street":             p.Address.Street,
		"number":             p.Address.Number,
		"complement":         p.Address.Complement,
		"neighborhood":       p.Address.Neighborhood,
		"city":               p.Address.City,
		"state":              p.Address.State,
		"phone":              p.Contact.Phone,
		"email":              p.Contact.Email,
		"insurance_type":     string(p.Insurance),
		"smoker":             p.Health.Smoker,
		"drinker":            p.Health.Drinker,
		"high_cholesterol":   p.Health.HighCholesterol,
		"diabetic":           p.Health.Diabetic,
		"cardiac_conditions": p.Health.CardiacConditions,
		"past_surgeries":     p.Health.PastSurgeries,
		"allergies":          p.Health.Allergies,
		"next_record_id":     p.NextRecordID(),
	}
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var insurance string
	var next int
	err := row.Scan(&p.ID, &p.Name, &p.NationalID, &p.BirthDate,
		&p.Address.Street, &p.Address.Number, &p.Address.Complement, &p.Address.Neighborhood,
		&p.Address.City, &p.Address.State,
		&p.Contact.Phone, &p.Contact.Email, &insurance,
		&p.Health.Smoker, &p.Health.Drinker, &p.Health.HighCholesterol, &p.Health.Diabetic,
		&p.Health.CardiacConditions, &p.Health.PastSurgeries, &p.Health.Allergies, &next)
	if err != nil {
		return nil, err
	}
	p.Insurance = InsuranceType(insurance)
	p.nextRecordID = next
	p.Records = []MedicalRecordEntry{}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	query, args, err := pg.Insert("patient").Rows(patientRecord(p)).Returning("id").Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID); err != nil {
		return err
	}
	return r.replaceRecords(ctx, r.pool, p)
}

func (r *repoPG) get(ctx context.Context, q queryable, id int, forUpdate bool) (*Patient, error) {
	ds := pg.From("patient").Select(patientCols...).Where(goqu.C("id").Eq(id))
	if forUpdate {
		ds = ds.ForUpdate(goqu.Wait)
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	p, err := scanPatient(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadRecords(ctx, q, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) loadRecords(ctx context.Context, q queryable, p *Patient) error {
	query, args, err := pg.From("medical_record").
		Select("id", "visit_date", "symptoms", "diagnosis", "prescription", "doctor_id").
		Where(goqu.C("patient_id").Eq(p.ID)).
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build select records: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e MedicalRecordEntry
		if err := rows.Scan(&e.ID, &e.VisitDate, &e.Symptoms, &e.Diagnosis, &e.Prescription, &e.DoctorID); err != nil {
			return err
		}
		p.Records = append(p.Records, e)
	}
	return rows.Err()
}

func (r *repoPG) replaceRecords(ctx context.Context, q queryable, p *Patient) error {
	del, args, err := pg.Delete("medical_record").Where(goqu.C("patient_id").Eq(p.ID)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete records: %w", err)
	}
	if _, err := q.Exec(ctx, del, args...); err != nil {
		return err
	}
	if len(p.Records) == 0 {
		return nil
	}
	rows := make([]interface{}, 0, len(p.Records))
	for _, e := range p.Records {
		rows = append(rows, goqu.Record{
			"patient_id":   p.ID,
			"id":           e.ID,
			"visit_date":   e.VisitDate,
			"symptoms":     e.Symptoms,
			"diagnosis":    e.Diagnosis,
			"prescription": e.Prescription,
			"doctor_id":    e.DoctorID,
		})
	}
	ins, args, err := pg.Insert("medical_record").Rows(rows...).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert records: %w", err)
	}
	_, err = q.Exec(ctx, ins, args...)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	return r.get(ctx, r.pool, id, false)
}

func (r *repoPG) Delete(ctx context.Context, id int) error {
	query, args, err := pg.Delete("patient").Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
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

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	query, args, err := pg.From("patient").Select(patientCols...).Order(goqu.C("id").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range items {
		if err := r.loadRecords(ctx, r.pool, p); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *repoPG) Mutate(ctx context.Context, id int, fn func(p *Patient) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := r.get(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}

	rec := patientRecord(p)
	rec["updated_at"] = goqu.L("NOW()")
	query, args, err := pg.Update("patient").Set(rec).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return err
	}
	p.ID = id
	if err := r.replaceRecords(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
