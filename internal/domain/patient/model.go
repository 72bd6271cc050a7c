package patient

import (
	"fmt"
	"strings"
	"time"
)

// InsuranceType is how a patient's visits are paid for.
type InsuranceType string

const (
	SelfPay       InsuranceType = "SELF_PAY"
	InsurancePlan InsuranceType = "INSURANCE_PLAN"
)

// ParseInsuranceType accepts the canonical tags case-insensitively.
func ParseInsuranceType(s string) (InsuranceType, error) {
	switch InsuranceType(strings.ToUpper(strings.TrimSpace(s))) {
	case SelfPay:
		return SelfPay, nil
	case InsurancePlan:
		return InsurancePlan, nil
	}
	return "", fmt.Errorf("invalid insurance type: %q", s)
}

// Address is a postal address attached to a patient.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// String renders the address on one line, e.g.
// "Rua A, 100 - Apto 101, Centro, Maringa/PR". The complement is omitted when empty.
func (a Address) String() string {
	var b strings.Builder
	b.WriteString(a.Street)
	b.WriteString(", ")
	b.WriteString(a.Number)
	if a.Complement != "" {
		b.WriteString(" - ")
		b.WriteString(a.Complement)
	}
	b.WriteString(", ")
	b.WriteString(a.Neighborhood)
	b.WriteString(", ")
	b.WriteString(a.City)
	b.WriteString("/")
	b.WriteString(a.State)
	return b.String()
}

// Contact holds the reminder channels of a patient. Either field may be empty.
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// HealthProfile is the anamnesis record kept 1:1 with a patient. It is always
// replaced as a whole; the zero value is the empty profile.
type HealthProfile struct {
	Smoker            bool   `json:"smoker"`
	Drinker           bool   `json:"drinker"`
	HighCholesterol   bool   `json:"high_cholesterol"`
	Diabetic          bool   `json:"diabetic"`
	CardiacConditions string `json:"cardiac_conditions"`
	PastSurgeries     string `json:"past_surgeries"`
	Allergies         string `json:"allergies"`
}

// MedicalRecordEntry is one documented clinical encounter. IDs are unique only
// within the owning patient. The treating doctor is referenced by id.
type MedicalRecordEntry struct {
	ID           int       `json:"id"`
	VisitDate    time.Time `json:"visit_date"`
	Symptoms     string    `json:"symptoms"`
	Diagnosis    string    `json:"diagnosis"`
	Prescription string    `json:"prescription"`
	DoctorID     int       `json:"doctor_id"`
}

// Patient is a registered patient. It exclusively owns its health profile and
// its medical record history.
type Patient struct {
	ID         int                  `json:"id"`
	Name       string               `json:"name"`
	NationalID string               `json:"national_id"`
	BirthDate  time.Time            `json:"birth_date"`
	Address    Address              `json:"address"`
	Contact    Contact              `json:"contact"`
	Insurance  InsuranceType        `json:"insurance_type"`
	Health     HealthProfile        `json:"health_profile"`
	Records    []MedicalRecordEntry `json:"records"`

	// nextRecordID is the id the next ledger entry will receive.
	nextRecordID int
}

// New builds an unsaved patient with an empty health profile and history.
func New(name, nationalID string, birthDate time.Time, addr Address, contact Contact, insurance InsuranceType) *Patient {
	return &Patient{
		Name:         name,
		NationalID:   nationalID,
		BirthDate:    birthDate,
		Address:      addr,
		Contact:      contact,
		Insurance:    insurance,
		Records:      []MedicalRecordEntry{},
		nextRecordID: 1,
	}
}

// NextRecordID reports the id the next ledger entry will receive.
func (p *Patient) NextRecordID() int {
	if p.nextRecordID < 1 {
		return 1
	}
	return p.nextRecordID
}

// SetNextRecordID restores the ledger counter after a storage round trip.
func (p *Patient) SetNextRecordID(n int) { p.nextRecordID = n }

// Clone returns a deep copy so callers never share the stored record slice.
func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Records = make([]MedicalRecordEntry, len(p.Records))
	copy(cp.Records, p.Records)
	return &cp
}
