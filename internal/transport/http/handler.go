// Package httptransport is the thin HTTP layer over the repositories,
// wizards and services. Handlers delegate to the domain and translate errors;
// no business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentinela/internal/address"
	"sentinela/internal/archive"
	"sentinela/internal/assist"
	"sentinela/internal/onboarding"
	"sentinela/internal/patient"
	"sentinela/internal/platform/metrics"
	"sentinela/internal/platform/middleware"
	"sentinela/internal/record"
	"sentinela/internal/screening"
	"sentinela/internal/settings"
	"sentinela/pkg/platform/httputil"
)

// Handler bundles every outward-facing operation behind one router.
type Handler struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	patients  *patient.Repository
	records   *record.Repository
	intake    *onboarding.Wizard
	screening *screening.Wizard
	assist    *assist.Service
	archive   *archive.Service
	addresses *address.Client
	settings  *settings.Service

	jwtValidator middleware.JWTValidator
}

// Deps carries the collaborators a Handler needs. JWTValidator may be nil to
// run the API unauthenticated.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Patients  *patient.Repository
	Records   *record.Repository
	Intake    *onboarding.Wizard
	Screening *screening.Wizard
	Assist    *assist.Service
	Archive   *archive.Service
	Addresses *address.Client
	Settings  *settings.Service

	JWTValidator middleware.JWTValidator
}

// New creates the HTTP handler.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:       logger,
		metrics:      d.Metrics,
		patients:     d.Patients,
		records:      d.Records,
		intake:       d.Intake,
		screening:    d.Screening,
		assist:       d.Assist,
		archive:      d.Archive,
		addresses:    d.Addresses,
		settings:     d.Settings,
		jwtValidator: d.JWTValidator,
	}
}

// Router wires all endpoints. /healthz and /metrics stay outside the
// authenticated subtree so probes and scrapers need no token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", h.handleListPatients)
			r.Get("/active", h.handleActivePatient)
			r.Post("/active", h.handleSwitchActive)
			r.Get("/{id}", h.handleGetPatient)
			r.Delete("/{id}", h.handleRemovePatient)
			r.Get("/{id}/records", h.handleListRecords)
		})
		r.Post("/records", h.handleAddRecord)

		r.Route("/intake", func(r chi.Router) {
			r.Get("/", h.handleIntakeState)
			r.Post("/start", h.handleIntakeStart)
			r.Post("/edit", h.handleIntakeEdit)
			r.Post("/next", h.handleIntakeNext)
			r.Post("/back", h.handleIntakeBack)
			r.Post("/jump", h.handleIntakeJump)
			r.Put("/identity", h.handleIntakeIdentity)
			r.Put("/emergency-contact", h.handleIntakeEmergencyContact)
			r.Put("/physicals", h.handleIntakePhysicals)
			r.Put("/clinical-context", h.handleIntakeClinicalContext)
			r.Put("/background", h.handleIntakeBackground)
			r.Put("/admin", h.handleIntakeAdmin)
			r.Put("/location", h.handleIntakeLocation)
			r.Get("/address-suggestions", h.handleIntakeAddressSuggestions)
			r.Post("/finalize", h.handleIntakeFinalize)
			r.Post("/cancel", h.handleIntakeCancel)
		})

		r.Route("/screening", func(r chi.Router) {
			r.Get("/", h.handleScreeningState)
			r.Put("/answers", h.handleScreeningAnswers)
			r.Post("/next", h.handleScreeningNext)
			r.Post("/back", h.handleScreeningBack)
			r.Post("/analyze", h.handleScreeningAnalyze)
			r.Post("/commit", h.handleScreeningCommit)
			r.Post("/reset", h.handleScreeningReset)
		})

		r.Route("/assist", func(r chi.Router) {
			r.Post("/run", h.handleAssistRun)
			r.Post("/save", h.handleAssistSave)
			r.Get("/result", h.handleAssistResult)
			r.Get("/emergency-script", h.handleEmergencyScript)
		})

		r.Route("/archive", func(r chi.Router) {
			r.Post("/ingest", h.handleArchiveIngest)
			r.Post("/save", h.handleArchiveSave)
		})

		r.Get("/address/suggest", h.handleAddressSuggest)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/language", h.handleGetLanguage)
			r.Put("/language", h.handleSetLanguage)
		})
	})

	return r
}
