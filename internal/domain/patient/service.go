package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RegisterInput carries the already-parsed fields of a new patient.
type RegisterInput struct {
	Name       string        `json:"name"`
	NationalID string        `json:"national_id"`
	BirthDate  time.Time     `json:"birth_date"`
	Address    Address       `json:"address"`
	Contact    Contact       `json:"contact"`
	Insurance  InsuranceType `json:"insurance_type"`
}

// UpdateInput carries the mutable demographic fields. National id and birth
// date cannot change after registration.
type UpdateInput struct {
	Name      string        `json:"name"`
	Address   Address       `json:"address"`
	Contact   Contact       `json:"contact"`
	Insurance InsuranceType `json:"insurance_type"`
}

// Service is the patient registry.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "patient-registry").Logger()}
}

// Register stores a new patient under the next id. Input is expected to be
// validated by the caller; only the insurance tag is checked.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if in.Insurance == "" {
		in.Insurance = SelfPay
	}
	if _, err := ParseInsuranceType(string(in.Insurance)); err != nil {
		return nil, err
	}
	p := New(in.Name, in.NationalID, in.BirthDate, in.Address, in.Contact, in.Insurance)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	s.logger.Info().Int("patient_id", p.ID).Msg("patient registered")
	return p, nil
}

// Update overwrites name, address, contact and insurance. ErrNotFound when absent.
func (s *Service) Update(ctx context.Context, id int, in UpdateInput) error {
	if in.Insurance != "" {
		if _, err := ParseInsuranceType(string(in.Insurance)); err != nil {
			return err
		}
	}
	return s.repo.Mutate(ctx, id, func(p *Patient) error {
		p.Name = in.Name
		p.Address = in.Address
		p.Contact = in.Contact
		if in.Insurance != "" {
			p.Insurance = in.Insurance
		}
		return nil
	})
}

// Remove drops the patient from the roster. Appointments that reference the
// patient are left untouched.
func (s *Service) Remove(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int("patient_id", id).Msg("patient removed")
	return nil
}

func (s *Service) FindByID(ctx context.Context, id int) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]*Patient, error) {
	return s.repo.List(ctx)
}

// UpdateHealthProfile replaces the whole health profile.
func (s *Service) UpdateHealthProfile(ctx context.Context, id int, hp HealthProfile) error {
	return s.repo.Mutate(ctx, id, func(p *Patient) error {
		p.Health = hp
		return nil
	})
}

// ClearHealthProfile resets the health profile to the empty one.
func (s *Service) ClearHealthProfile(ctx context.Context, id int) error {
	return s.UpdateHealthProfile(ctx, id, HealthProfile{})
}

// Mutate exposes the registry's critical section to sibling services that
// edit patient-owned data such as the medical record ledger.
func (s *Service) Mutate(ctx context.Context, id int, fn func(p *Patient) error) error {
	return s.repo.Mutate(ctx, id, fn)
}
