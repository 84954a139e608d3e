package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfservice/internal/clients"
	"selfservice/internal/common/events"
	"selfservice/internal/directory"
	"selfservice/internal/gatewayaccount"
	"selfservice/internal/onboarding"
	"selfservice/internal/serviceview"
	"selfservice/internal/tasks"
)

const serviceID = "7d19aff33f8948deb97ed16b2912dcd3"

type stubUpstream struct {
	account    gatewayaccount.GatewayAccount
	accountErr error
	setup      tasks.StripeAccountSetup
	service    directory.Service
	serviceErr error
}

func (s *stubUpstream) GatewayAccount(ctx context.Context, serviceExternalID string, accountType gatewayaccount.AccountType) (gatewayaccount.GatewayAccount, error) {
	return s.account, s.accountErr
}

func (s *stubUpstream) StripeAccountSetup(ctx context.Context, serviceExternalID string, accountType gatewayaccount.AccountType) (tasks.StripeAccountSetup, error) {
	return s.setup, nil
}

func (s *stubUpstream) Service(ctx context.Context, serviceExternalID string) (directory.Service, error) {
	return s.service, s.serviceErr
}

type nopReporter struct{}

func (nopReporter) Unresolved(context.Context, directory.Service, gatewayaccount.GatewayAccount, string) {}

func newRouter(upstream *stubUpstream) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := onboarding.NewService(upstream, upstream, upstream, serviceview.NewResolver(nopReporter{}), events.NopPublisher{}, logger)

	r := chi.NewRouter()
	r.Mount("/api/v1", NewHandler(service, logger).Routes())
	return r
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func get(t *testing.T, h http.Handler, path string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestGetServiceStatus(t *testing.T) {
	upstream := &stubUpstream{
		service: directory.Service{ExternalID: serviceID, CurrentGoLiveStage: directory.StageNotStarted},
		account: gatewayaccount.GatewayAccount{ID: 1, Type: gatewayaccount.AccountTypeTest, PaymentProvider: gatewayaccount.ProviderSandbox},
	}

	code, body := get(t, newRouter(upstream), "/api/v1/services/"+serviceID+"/accounts/test/status")

	require.Equal(t, http.StatusOK, code)
	var view serviceview.View
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Equal(t, serviceview.StatusTestAccountOnly, view.StatusTag)
	assert.Equal(t, serviceview.DisplayTest, view.DisplayTag)
	require.NotNil(t, view.Action)
	assert.Equal(t, "/service/"+serviceID+"/request-to-go-live", view.Action.Href)
}

func TestGetWorldpayTasks(t *testing.T) {
	upstream := &stubUpstream{
		account: gatewayaccount.GatewayAccount{
			ID:               2,
			Type:             gatewayaccount.AccountTypeLive,
			PaymentProvider:  gatewayaccount.ProviderWorldpay,
			RecurringEnabled: true,
			Credentials: []gatewayaccount.Credential{{
				ExternalID:      "cred-1",
				PaymentProvider: gatewayaccount.ProviderWorldpay,
				State:           gatewayaccount.CredentialCreated,
			}},
		},
	}

	code, body := get(t, newRouter(upstream), "/api/v1/services/"+serviceID+"/accounts/live/tasks/worldpay")

	require.Equal(t, http.StatusOK, code)
	var result tasks.Tasks
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, []string{tasks.TaskWorldpayRecurringCIT, tasks.TaskWorldpayRecurringMIT, tasks.TaskWorldpayFlexCredential}, result.IDs())
	assert.True(t, result.IncompleteTasks)
}

func TestGetStripeTasks(t *testing.T) {
	upstream := &stubUpstream{
		account: gatewayaccount.GatewayAccount{ID: 3, Type: gatewayaccount.AccountTypeLive, PaymentProvider: gatewayaccount.ProviderStripe},
		setup:   tasks.StripeAccountSetup{BankAccount: true, ResponsiblePerson: true},
	}

	code, body := get(t, newRouter(upstream), "/api/v1/services/"+serviceID+"/accounts/live/tasks/stripe")

	require.Equal(t, http.StatusOK, code)
	var result tasks.Tasks
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Len(t, result.Tasks, 7)
	entityDoc, ok := result.Find(tasks.TaskStripeGovernmentEntityDocument)
	require.True(t, ok)
	assert.Equal(t, tasks.StatusCannotStart, entityDoc.Status)
}

func TestGetCredential(t *testing.T) {
	upstream := &stubUpstream{
		account: gatewayaccount.GatewayAccount{
			ID:         4,
			ExternalID: "ga-4",
			Credentials: []gatewayaccount.Credential{{
				ExternalID:      "cred-4",
				PaymentProvider: gatewayaccount.ProviderStripe,
				State:           gatewayaccount.CredentialActive,
			}},
		},
	}
	router := newRouter(upstream)

	code, body := get(t, router, "/api/v1/services/"+serviceID+"/accounts/live/credentials/cred-4")
	require.Equal(t, http.StatusOK, code)
	var credential gatewayaccount.Credential
	require.NoError(t, json.Unmarshal(body.Data, &credential))
	assert.Equal(t, gatewayaccount.CredentialActive, credential.State)

	code, body = get(t, router, "/api/v1/services/"+serviceID+"/accounts/live/credentials/unknown")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestGetSwitchingCredential_InvalidConfiguration(t *testing.T) {
	upstream := &stubUpstream{
		account: gatewayaccount.GatewayAccount{ID: 5, ProviderSwitchEnabled: false},
	}

	code, body := get(t, newRouter(upstream), "/api/v1/services/"+serviceID+"/accounts/live/switching-credential")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "INVALID_CONFIGURATION", body.Error.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"upstream not found", fmt.Errorf("getting gateway account: %w", clients.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"upstream unavailable", fmt.Errorf("getting gateway account: %w", clients.ErrUnavailable), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"upstream server error", &clients.StatusError{Upstream: "connector", StatusCode: http.StatusBadGateway}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"upstream client error", &clients.StatusError{Upstream: "connector", StatusCode: http.StatusBadRequest}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := &stubUpstream{accountErr: tt.err}

			code, body := get(t, newRouter(upstream), "/api/v1/services/"+serviceID+"/accounts/test/tasks/worldpay")

			assert.Equal(t, tt.expected, code)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestPathValidation(t *testing.T) {
	router := newRouter(&stubUpstream{})

	code, body := get(t, router, "/api/v1/services/"+serviceID+"/accounts/staging/status")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Details, "AccountType")

	code, body = get(t, router, "/api/v1/services/not-a-valid-id/accounts/test/status")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body.Error.Details, "ServiceExternalID")
}
