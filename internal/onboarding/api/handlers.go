package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfservice/internal/clients"
	"selfservice/internal/common/api"
	"selfservice/internal/common/middleware"
	"selfservice/internal/gatewayaccount"
	"selfservice/internal/onboarding"
)

// Handler handles onboarding HTTP requests
type Handler struct {
	service *onboarding.Service
	logger  *slog.Logger
}

// NewHandler creates a new onboarding handler
func NewHandler(service *onboarding.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the onboarding routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/services/{serviceExternalID}/accounts/{accountType}", func(r chi.Router) {
		r.Get("/status", h.GetServiceStatus)
		r.Get("/tasks/worldpay", h.GetWorldpayTasks)
		r.Get("/tasks/stripe", h.GetStripeTasks)
		r.Get("/credentials/{credentialExternalID}", h.GetCredential)
		r.Get("/switching-credential", h.GetSwitchingCredential)
	})

	return r
}

type credentialParams struct {
	CredentialExternalID string `validate:"required,max=64"`
}

// accountRef reads and validates the account path params. It writes the error response itself.
func accountRef(w http.ResponseWriter, r *http.Request) (onboarding.AccountRef, bool) {
	ref := onboarding.AccountRef{
		ServiceExternalID: chi.URLParam(r, "serviceExternalID"),
		AccountType:       gatewayaccount.AccountType(chi.URLParam(r, "accountType")),
	}
	if err := api.Validate.Struct(ref); err != nil {
		api.ValidationError(w, err)
		return onboarding.AccountRef{}, false
	}
	return ref, true
}

// GetServiceStatus handles GET /services/{serviceExternalID}/accounts/{accountType}/status
func (h *Handler) GetServiceStatus(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(w, r)
	if !ok {
		return
	}

	view, err := h.service.ServiceStatus(r.Context(), ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteData(w, http.StatusOK, view)
}

// GetWorldpayTasks handles GET /services/{serviceExternalID}/accounts/{accountType}/tasks/worldpay
func (h *Handler) GetWorldpayTasks(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(w, r)
	if !ok {
		return
	}

	result, err := h.service.WorldpayTasks(r.Context(), ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteData(w, http.StatusOK, result)
}

// GetStripeTasks handles GET /services/{serviceExternalID}/accounts/{accountType}/tasks/stripe
func (h *Handler) GetStripeTasks(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(w, r)
	if !ok {
		return
	}

	result, err := h.service.StripeTasks(r.Context(), ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteData(w, http.StatusOK, result)
}

// GetCredential handles GET /services/{serviceExternalID}/accounts/{accountType}/credentials/{credentialExternalID}
func (h *Handler) GetCredential(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(w, r)
	if !ok {
		return
	}
	params := credentialParams{CredentialExternalID: chi.URLParam(r, "credentialExternalID")}
	if err := api.Validate.Struct(params); err != nil {
		api.ValidationError(w, err)
		return
	}

	credential, err := h.service.Credential(r.Context(), ref, params.CredentialExternalID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteData(w, http.StatusOK, credential)
}

// GetSwitchingCredential handles GET /services/{serviceExternalID}/accounts/{accountType}/switching-credential
func (h *Handler) GetSwitchingCredential(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(w, r)
	if !ok {
		return
	}

	credential, err := h.service.SwitchingCredential(r.Context(), ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.WriteData(w, http.StatusOK, credential)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case gatewayaccount.IsNotFound(err):
		api.NotFound(w, "credential not found")
	case clients.IsNotFound(err):
		api.NotFound(w, "service or gateway account not found")
	case gatewayaccount.IsInvalidConfiguration(err):
		api.InvalidConfiguration(w, "gateway account credentials are misconfigured")
	case clients.IsUnavailable(err):
		h.logger.Warn("upstream unavailable", "error", err, "correlation_id", middleware.GetCorrelationID(r.Context()))
		api.ServiceUnavailable(w, "an upstream service is unavailable")
	default:
		h.logger.Error("request failed", "error", err, "path", r.URL.Path, "correlation_id", middleware.GetCorrelationID(r.Context()))
		api.InternalError(w, "an unexpected error occurred")
	}
}
