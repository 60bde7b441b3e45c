package httptransport

import (
	"net/http"

	"sentinela/internal/onboarding"
	"sentinela/internal/patient"
	"sentinela/internal/platform/middleware"
	"sentinela/pkg/platform/httputil"
)

type intakeStateResponse struct {
	Step     onboarding.Step `json:"step"`
	Progress float64         `json:"progress"`
	Draft    patient.Patient `json:"draft"`
}

func (h *Handler) intakeState() intakeStateResponse {
	return intakeStateResponse{
		Step:     h.intake.Current(),
		Progress: h.intake.Progress(),
		Draft:    h.intake.Draft(),
	}
}

func (h *Handler) handleIntakeState(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

func (h *Handler) handleIntakeStart(w http.ResponseWriter, _ *http.Request) {
	h.intake.Start()
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakeEditRequest struct {
	PatientID string `json:"patient_id"`
}

func (h *Handler) handleIntakeEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakeEditRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.intake.StartEdit(ctx, req.PatientID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

func (h *Handler) handleIntakeNext(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.intake.Next(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

func (h *Handler) handleIntakeBack(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.intake.Back(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakeJumpRequest struct {
	Step onboarding.Step `json:"step"`
}

func (h *Handler) handleIntakeJump(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakeJumpRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.intake.JumpTo(req.Step); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakeIdentityRequest struct {
	FullName string      `json:"full_name"`
	Age      int         `json:"age"`
	Sex      patient.Sex `json:"sex"`
}

func (h *Handler) handleIntakeIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakeIdentityRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.intake.SetIdentity(req.FullName, req.Age, req.Sex); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

func (h *Handler) handleIntakeEmergencyContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[patient.EmergencyContact](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	h.intake.SetEmergencyContact(req)
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakePhysicalsRequest struct {
	HeightCm  int               `json:"height_cm"`
	WeightKg  int               `json:"weight_kg"`
	BloodType patient.BloodType `json:"blood_type"`
}

func (h *Handler) handleIntakePhysicals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakePhysicalsRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.intake.SetPhysicals(req.HeightCm, req.WeightKg, req.BloodType); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakeClinicalContextRequest struct {
	IsPregnantOrBreastfeeding bool `json:"is_pregnant_or_breastfeeding"`
	PregnancyWeeks            int  `json:"pregnancy_weeks"`
}

func (h *Handler) handleIntakeClinicalContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakeClinicalContextRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.intake.SetClinicalContext(req.IsPregnantOrBreastfeeding, req.PregnancyWeeks); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakeBackgroundRequest struct {
	Allergies          string   `json:"allergies"`
	CurrentMedications string   `json:"current_medications"`
	KnownConditions    []string `json:"known_conditions"`
	MedicalHistory     string   `json:"medical_history"`
}

func (h *Handler) handleIntakeBackground(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakeBackgroundRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	h.intake.SetBackground(req.Allergies, req.CurrentMedications, req.KnownConditions, req.MedicalHistory)
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

type intakeAdminRequest struct {
	HospitalRecords []string `json:"hospital_records"`
}

func (h *Handler) handleIntakeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[intakeAdminRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	h.intake.SetAdmin(req.HospitalRecords)
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

func (h *Handler) handleIntakeLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[patient.Location](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	h.intake.SetLocation(req)
	httputil.WriteJSON(w, http.StatusOK, h.intakeState())
}

func (h *Handler) handleIntakeAddressSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.intake.SuggestAddress(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) handleIntakeFinalize(w http.ResponseWriter, r *http.Request) {
	p, err := h.intake.Finalize(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleIntakeCancel(w http.ResponseWriter, _ *http.Request) {
	h.intake.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
