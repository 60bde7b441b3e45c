package httptransport

import (
	"net/http"

	"sentinela/internal/archive"
	"sentinela/internal/assist"
	"sentinela/internal/platform/middleware"
	"sentinela/internal/settings"
	"sentinela/pkg/platform/httputil"
)

type assistRunRequest struct {
	Narrative string `json:"narrative"`
}

func (h *Handler) handleAssistRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[assistRunRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	result, err := h.assist.Run(ctx, req.Narrative)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAssistSave(w http.ResponseWriter, r *http.Request) {
	rec, err := h.assist.SaveSummary(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleAssistResult(w http.ResponseWriter, _ *http.Request) {
	result, ok := h.assist.Result()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleEmergencyScript(w http.ResponseWriter, r *http.Request) {
	active, err := h.patients.Active(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	script := assist.EmergencyScript(active, r.URL.Query().Get("narrative"))
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"script": script})
}

type archiveIngestRequest struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

func (h *Handler) handleArchiveIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[archiveIngestRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	draft, err := h.archive.Ingest(ctx, req.Name, req.MimeType, req.Data)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handler) handleArchiveSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[archive.Draft](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	rec, err := h.archive.Save(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleAddressSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.addresses.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, suggestions)
}

type languageResponse struct {
	Language settings.Language `json:"language"`
}

func (h *Handler) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, languageResponse{Language: h.settings.Language(r.Context())})
}

func (h *Handler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[languageResponse](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}
	if err := h.settings.SetLanguage(ctx, req.Language); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
