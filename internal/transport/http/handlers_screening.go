package httptransport

import (
	"net/http"

	"sentinela/internal/platform/middleware"
	"sentinela/internal/ports"
	"sentinela/internal/screening"
	"sentinela/pkg/platform/httputil"
)

type screeningStateResponse struct {
	Phase    screening.Phase          `json:"phase"`
	Progress float64                  `json:"progress"`
	Answers  ports.EndemicAnswers     `json:"answers"`
	Result   *ports.EndemicAssessment `json:"result,omitempty"`
}

func (h *Handler) screeningState() screeningStateResponse {
	resp := screeningStateResponse{
		Phase:    h.screening.CurrentPhase(),
		Progress: h.screening.Progress(),
		Answers:  h.screening.Answers(),
	}
	if result, ok := h.screening.Result(); ok {
		resp.Result = &result
	}
	return resp
}

func (h *Handler) handleScreeningState(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.screeningState())
}

func (h *Handler) handleScreeningAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ports.EndemicAnswers](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	h.screening.Update(req)
	httputil.WriteJSON(w, http.StatusOK, h.screeningState())
}

func (h *Handler) handleScreeningNext(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.screening.Next(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.screeningState())
}

func (h *Handler) handleScreeningBack(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.screening.Back(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.screeningState())
}

func (h *Handler) handleScreeningAnalyze(w http.ResponseWriter, r *http.Request) {
	assessment, err := h.screening.Analyze(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assessment)
}

func (h *Handler) handleScreeningCommit(w http.ResponseWriter, r *http.Request) {
	rec, err := h.screening.Commit(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleScreeningReset(w http.ResponseWriter, _ *http.Request) {
	h.screening.Reset()
	w.WriteHeader(http.StatusNoContent)
}
