// Package staff holds the clinic's reference data about its employees: the
// doctor roster used by scheduling, records and documents, plus secretaries.
package staff

import "fmt"

// Employee is the shape shared by every staff member.
type Employee struct {
	ID         int     `json:"id" mapstructure:"id"`
	Name       string  `json:"name" mapstructure:"name"`
	NationalID string  `json:"national_id" mapstructure:"national_id"`
	Salary     float64 `json:"salary" mapstructure:"salary"`
}

// Member is implemented by every staff variant.
type Member interface {
	Record() Employee
}

// Doctor is a licensed clinician.
type Doctor struct {
	Employee  `mapstructure:",squash"`
	LicenseID string `json:"license_id" mapstructure:"license_id"`
	Specialty string `json:"specialty" mapstructure:"specialty"`
}

func (d Doctor) Record() Employee { return d.Employee }

// String renders "Name (Specialty)" for pick lists.
func (d Doctor) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Specialty)
}

// Secretary handles registration and scheduling at the front desk.
type Secretary struct {
	Employee `mapstructure:",squash"`
}

func (s Secretary) Record() Employee { return s.Employee }
