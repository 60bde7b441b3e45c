package record

import (
	"strings"
	"time"

	dErrors "sentinela/pkg/domain-errors"
)

// OperatorRole identifies who entered a record.
type OperatorRole string

const (
	RolePatient   OperatorRole = "Patient"
	RoleCaregiver OperatorRole = "Caregiver"
	RoleClinician OperatorRole = "Clinician"
)

var validRoles = map[OperatorRole]bool{
	RolePatient:   true,
	RoleCaregiver: true,
	RoleClinician: true,
}

func (r OperatorRole) IsValid() bool { return validRoles[r] }

// Vitals carries optional measurements attached to a record. All sub-fields
// are optional, but a Vitals with every field empty is never stored.
type Vitals struct {
	Systolic    string `json:"systolic,omitempty"`
	Diastolic   string `json:"diastolic,omitempty"`
	HeartRate   string `json:"heart_rate,omitempty"`
	SpO2        string `json:"spo2,omitempty"`
	Temperature string `json:"temperature,omitempty"`
}

// IsEmpty reports whether every sub-field is blank.
func (v Vitals) IsEmpty() bool {
	return strings.TrimSpace(v.Systolic) == "" &&
		strings.TrimSpace(v.Diastolic) == "" &&
		strings.TrimSpace(v.HeartRate) == "" &&
		strings.TrimSpace(v.SpO2) == "" &&
		strings.TrimSpace(v.Temperature) == ""
}

// Attachment is an opaque payload stored with a record. Immutable.
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// MedicalRecord is one append-only clinical entry. Records are immutable once
// created: they are never edited, only added or removed by patient cascade.
//
// Ordering key for views: DocumentDate when present, else CreatedAt; ties
// break by CreatedAt. A record entered today about last month's lab report
// sorts by the report's date, not the entry date.
type MedicalRecord struct {
	ID           string       `json:"id"`
	PatientID    string       `json:"patient_id"`
	OperatorRole OperatorRole `json:"operator_role"`
	CreatedAt    time.Time    `json:"created_at"`
	DocumentDate *time.Time   `json:"document_date,omitempty"`
	Content      string       `json:"content"`
	Vitals       *Vitals      `json:"vitals,omitempty"`
	Attachments  []Attachment `json:"attachments"`
}

// EffectiveDate is the ordering key.
func (r MedicalRecord) EffectiveDate() time.Time {
	if r.DocumentDate != nil {
		return *r.DocumentDate
	}
	return r.CreatedAt
}

// Validate enforces the invariants a record must satisfy before it is stored.
func (r MedicalRecord) Validate() error {
	if r.PatientID == "" {
		return dErrors.New(dErrors.CodeValidation, "record patient id is required")
	}
	if strings.TrimSpace(r.Content) == "" && len(r.Attachments) == 0 {
		return dErrors.New(dErrors.CodeValidation, "record needs content or an attachment")
	}
	if r.OperatorRole != "" && !r.OperatorRole.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown operator role")
	}
	if r.Vitals != nil && r.Vitals.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "vitals must carry at least one measurement")
	}
	seen := make(map[string]bool, len(r.Attachments))
	for _, a := range r.Attachments {
		if a.ID == "" {
			return dErrors.New(dErrors.CodeValidation, "attachment id is required")
		}
		if seen[a.ID] {
			return dErrors.New(dErrors.CodeValidation, "attachment ids must be unique within a record")
		}
		seen[a.ID] = true
	}
	return nil
}
