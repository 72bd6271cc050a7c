package staff

import (
	"fmt"

	"github.com/spf13/viper"
)

// Roster is the read-only staff directory. It is built once at startup and
// handed to every component that needs to resolve a doctor.
type Roster struct {
	doctors     []Doctor
	secretaries []Secretary
	byID        map[int]int
}

// NewRoster validates the seed and builds the lookup index. Doctor ids must be
// positive and unique.
func NewRoster(doctors []Doctor, secretaries []Secretary) (*Roster, error) {
	r := &Roster{
		doctors:     make([]Doctor, len(doctors)),
		secretaries: make([]Secretary, len(secretaries)),
		byID:        make(map[int]int, len(doctors)),
	}
	copy(r.doctors, doctors)
	copy(r.secretaries, secretaries)
	for i, d := range r.doctors {
		if d.ID <= 0 {
			return nil, fmt.Errorf("doctor %q: id must be positive", d.Name)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate doctor id %d", d.ID)
		}
		r.byID[d.ID] = i
	}
	return r, nil
}

// FindDoctor returns a copy of the doctor with the given id.
func (r *Roster) FindDoctor(id int) (*Doctor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	d := r.doctors[i]
	return &d, true
}

// Doctors lists the roster in seed order.
func (r *Roster) Doctors() []Doctor {
	out := make([]Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out
}

func (r *Roster) Secretaries() []Secretary {
	out := make([]Secretary, len(r.secretaries))
	copy(out, r.secretaries)
	return out
}

// Members returns every staff member, doctors first.
func (r *Roster) Members() []Member {
	out := make([]Member, 0, len(r.doctors)+len(r.secretaries))
	for _, d := range r.doctors {
		out = append(out, d)
	}
	for _, s := range r.secretaries {
		out = append(out, s)
	}
	return out
}

type seedFile struct {
	Doctors     []Doctor    `mapstructure:"doctors"`
	Secretaries []Secretary `mapstructure:"secretaries"`
}

// LoadRoster reads a YAML, JSON or TOML seed file with "doctors" and
// "secretaries" lists. An empty path yields DefaultSeed.
func LoadRoster(path string) (*Roster, error) {
	if path == "" {
		d, s := DefaultSeed()
		return NewRoster(d, s)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	var seed seedFile
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("unmarshal roster file: %w", err)
	}
	return NewRoster(seed.Doctors, seed.Secretaries)
}

// DefaultSeed is the built-in staff list used when no roster file is configured.
func DefaultSeed() ([]Doctor, []Secretary) {
	doctors := []Doctor{
		{Employee: Employee{ID: 1, Name: "Dr. House", NationalID: "123.456.789-00", Salary: 15000}, LicenseID: "CRM/PR 12345", Specialty: "Clínico Geral"},
		{Employee: Employee{ID: 2, Name: "Dra. Grey", NationalID: "987.654.321-00", Salary: 18000}, LicenseID: "CRM/PR 54321", Specialty: "Cardiologia"},
	}
	secretaries := []Secretary{
		{Employee: Employee{ID: 100, Name: "Ana Souza", NationalID: "222.333.444-55", Salary: 3200}},
	}
	return doctors, secretaries
}
