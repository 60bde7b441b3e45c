package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sentinela/internal/platform/middleware"
	"sentinela/internal/record"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/httputil"
)

func (h *Handler) handleListPatients(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.patients.List(r.Context()))
}

func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.patients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleActivePatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.patients.Active(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

type switchActiveRequest struct {
	PatientID string `json:"patient_id"`
}

func (h *Handler) handleSwitchActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[switchActiveRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.patients.SwitchActive(ctx, req.PatientID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemovePatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.patients.Remove(ctx, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := chi.URLParam(r, "id")
	if _, err := h.patients.Get(ctx, patientID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.records.Query(ctx, patientID))
}

func (h *Handler) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[record.MedicalRecord](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	// Manual entries must reference an existing patient; the repository only
	// guards the record's own shape.
	if _, err := h.patients.Get(ctx, req.PatientID); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "record references an unknown patient"))
		return
	}

	rec, err := h.records.Add(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}
