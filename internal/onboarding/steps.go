package onboarding

import "sentinela/internal/patient"

// Step is one stop in the intake wizard.
type Step string

const (
	StepIdentity         Step = "IDENTITY"
	StepEmergencyContact Step = "EMERGENCY_CONTACT"
	StepPhysicals        Step = "PHYSICALS"
	StepClinicalContext  Step = "CLINICAL_CONTEXT"
	StepBackground       Step = "BACKGROUND"
	StepAdmin            Step = "ADMIN"
	StepLocation         Step = "LOCATION"
	StepReview           Step = "REVIEW"
)

var stepOrder = []Step{
	StepIdentity,
	StepEmergencyContact,
	StepPhysicals,
	StepClinicalContext,
	StepBackground,
	StepAdmin,
	StepLocation,
	StepReview,
}

// pathFor returns the ordered steps a draft with the given sex walks through.
// Male drafts skip CLINICAL_CONTEXT; the step graph lives here and nowhere
// else, so forward and backward navigation can never disagree.
func pathFor(sex patient.Sex) []Step {
	if sex != patient.SexMale {
		return stepOrder
	}
	path := make([]Step, 0, len(stepOrder)-1)
	for _, s := range stepOrder {
		if s == StepClinicalContext {
			continue
		}
		path = append(path, s)
	}
	return path
}

func indexOn(path []Step, s Step) int {
	for i, p := range path {
		if p == s {
			return i
		}
	}
	return -1
}

// nextStep returns the step after s on the path for sex, or ok=false at the
// end of the path.
func nextStep(s Step, sex patient.Sex) (Step, bool) {
	path := pathFor(sex)
	i := indexOn(path, s)
	if i < 0 || i+1 >= len(path) {
		return s, false
	}
	return path[i+1], true
}

// prevStep is the exact inverse of nextStep.
func prevStep(s Step, sex patient.Sex) (Step, bool) {
	path := pathFor(sex)
	i := indexOn(path, s)
	if i <= 0 {
		return s, false
	}
	return path[i-1], true
}
