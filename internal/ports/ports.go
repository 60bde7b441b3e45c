// Package ports defines the contracts for external collaborators consumed by
// the core. Implementations live outside this module (generative-AI backends,
// geocoding services); the core only depends on these interfaces.
//
// Collaborator failures are reported through the sentinels in
// pkg/platform/sentinel (ErrRateLimited, ErrUnavailable, ErrMalformedResponse)
// so callers can distinguish retry guidance without string matching.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks RiskAssessor,DocumentExtractor,AddressSuggester,EndemicAssessor

import (
	"context"
	"time"
)

// PatientProfile is the slice of patient data collaborators are allowed to
// see. It deliberately excludes free-text history fields not needed for the
// call at hand.
type PatientProfile struct {
	FullName        string   `json:"full_name"`
	Age             int      `json:"age"`
	Sex             string   `json:"sex"`
	KnownConditions []string `json:"known_conditions"`
	Pregnant        bool     `json:"pregnant"`
}

// PossibleCause is one differential candidate returned by the risk assessor.
type PossibleCause struct {
	Name       string  `json:"name"`
	Rationale  string  `json:"rationale"`
	Confidence float64 `json:"confidence"`
}

// NextAction is a recommended step with an urgency label.
type NextAction struct {
	Urgency string `json:"urgency"`
	Details string `json:"details"`
}

// OTCOption describes an over-the-counter option with its warnings.
type OTCOption struct {
	Name     string `json:"name"`
	Purpose  string `json:"purpose"`
	Warnings string `json:"warnings"`
}

// TriageResult is the structured assessment produced by a RiskAssessor.
type TriageResult struct {
	RiskLevel      string          `json:"risk_level"`
	Reason         string          `json:"reason"`
	TopQuestions   []string        `json:"top_questions"`
	PossibleCauses []PossibleCause `json:"possible_causes"`
	NextActions    []NextAction    `json:"next_actions"`
	OTCOptions     []OTCOption     `json:"otc_options"`
	WhenToSeekCare []string        `json:"when_to_seek_care"`
}

// RiskAssessor turns a symptom narrative plus patient context into a
// structured triage assessment.
type RiskAssessor interface {
	Assess(ctx context.Context, profile PatientProfile, narrative string, recentHistory []string) (*TriageResult, error)
}

// Extraction is the result of analyzing an uploaded medical document.
// DocumentDate is nil when the extractor could not find a date.
type Extraction struct {
	Summary      string     `json:"summary"`
	DocumentDate *time.Time `json:"document_date,omitempty"`
}

// DocumentExtractor summarizes an uploaded document (photo, PDF).
type DocumentExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (*Extraction, error)
}

// Suggestion is one structured address candidate.
type Suggestion struct {
	Street   string `json:"street"`
	Bairro   string `json:"bairro"`
	Distrito string `json:"distrito"`
	Cidade   string `json:"cidade"`
	Country  string `json:"country"`
}

// AddressSuggester completes a partial address input with up to five
// structured candidates.
type AddressSuggester interface {
	Suggest(ctx context.Context, partial string) ([]Suggestion, error)
}

// EndemicAssessment is the classification returned by the endemic-disease
// assessor. RiskLevel is advisory; the screening wizard applies its own
// danger-sign override before anything is recorded.
type EndemicAssessment struct {
	RiskLevel      string `json:"risk_level"`
	Recommendation string `json:"recommendation"`
	Summary        string `json:"summary"`
}

// AgeSex is the minimal demographic context sent with a screening answer set.
type AgeSex struct {
	Age int    `json:"age"`
	Sex string `json:"sex"`
}

// EndemicAnswers is the full questionnaire answer set sent to the assessor.
// Gated sub-fields (TravelWhere, FeverTemp, FeverDays, FeverType) are only
// meaningful when their gate boolean is true.
type EndemicAnswers struct {
	Travel       bool   `json:"travel"`
	TravelWhere  string `json:"travel_where"`
	Exposure     bool   `json:"exposure"`
	CloseContact bool   `json:"close_contact"`
	Chills       bool   `json:"chills"`

	FeverNow  bool   `json:"fever_now"`
	FeverTemp string `json:"fever_temp"`
	FeverDays string `json:"fever_days"`
	FeverType string `json:"fever_type"`

	Headache      bool `json:"headache"`
	MuscleAches   bool `json:"muscle_aches"`
	Fatigue       bool `json:"fatigue"`
	Vomiting      bool `json:"vomiting"`
	Diarrhea      bool `json:"diarrhea"`
	AbdominalPain bool `json:"abdominal_pain"`

	EatNormal   bool `json:"eat_normal"`
	DrinkNormal bool `json:"drink_normal"`

	Confusion           bool `json:"confusion"`
	Breathing           bool `json:"breathing"`
	DarkUrine           bool `json:"dark_urine"`
	Jaundice            bool `json:"jaundice"`
	CantStand           bool `json:"cant_stand"`
	Seizures            bool `json:"seizures"`
	SevereAbdominalPain bool `json:"severe_abdominal_pain"`
}

// EndemicAssessor classifies a completed screening questionnaire.
type EndemicAssessor interface {
	Assess(ctx context.Context, answers EndemicAnswers, demo AgeSex) (*EndemicAssessment, error)
}
