package patient

import (
	"strings"
	"time"

	dErrors "sentinela/pkg/domain-errors"
)

// Sex is the biological sex recorded on a profile.
type Sex string

const (
	SexFemale   Sex = "Female"
	SexMale     Sex = "Male"
	SexIntersex Sex = "Intersex / Differences of Sex Development"
)

var validSexes = map[Sex]bool{
	SexFemale:   true,
	SexMale:     true,
	SexIntersex: true,
}

func (s Sex) IsValid() bool { return validSexes[s] }

// BloodType is one of the ABO/Rh groups, or Unknown.
type BloodType string

// BloodTypes lists the accepted values in display order.
var BloodTypes = []BloodType{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-", "Unknown"}

func (b BloodType) IsValid() bool {
	if b == "" {
		return true
	}
	for _, v := range BloodTypes {
		if b == v {
			return true
		}
	}
	return false
}

// Location is a structured Mozambican address.
type Location struct {
	Street   string `json:"street"`
	Bairro   string `json:"bairro"`
	Distrito string `json:"distrito"`
	Cidade   string `json:"cidade"`
	Country  string `json:"country"`
}

// EmergencyContact is the person to call on the patient's behalf.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Patient is the aggregate root for one profile. It is owned exclusively by
// the Repository and replaced wholesale on edit; there is no partial patch.
//
// Invariants:
//   - FullName is non-blank
//   - Sex is one of the supported values
//   - Pregnancy fields are zero whenever Sex is Male
type Patient struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	Sex      Sex    `json:"sex"`

	HeightCm  int       `json:"height_cm,omitempty"`
	WeightKg  int       `json:"weight_kg,omitempty"`
	BloodType BloodType `json:"blood_type,omitempty"`

	IsPregnantOrBreastfeeding bool `json:"is_pregnant_or_breastfeeding,omitempty"`
	PregnancyWeeks            int  `json:"pregnancy_weeks,omitempty"`

	Allergies          string   `json:"allergies,omitempty"`
	CurrentMedications string   `json:"current_medications,omitempty"`
	KnownConditions    []string `json:"known_conditions"`
	MedicalHistory     string   `json:"medical_history,omitempty"`

	EmergencyContact EmergencyContact `json:"emergency_contact"`
	HospitalRecords  []string         `json:"hospital_records,omitempty"`
	Location         Location         `json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the profile invariants before it enters the repository.
func (p Patient) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return dErrors.New(dErrors.CodeValidation, "full name is required")
	}
	if !p.Sex.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown sex value")
	}
	if p.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age cannot be negative")
	}
	if !p.BloodType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown blood type")
	}
	if p.Sex == SexMale && (p.IsPregnantOrBreastfeeding || p.PregnancyWeeks != 0) {
		return dErrors.New(dErrors.CodeInvariantViolation, "pregnancy fields must be clear on a male profile")
	}
	return nil
}
