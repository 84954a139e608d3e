package clients

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfservice/internal/common/middleware"
	"selfservice/internal/directory"
	"selfservice/internal/gatewayaccount"
)

const (
	connectorURL  = "http://connector.test"
	adminusersURL = "http://adminusers.test"
)

func testConfig() Config {
	return Config{
		ConnectorURL:    connectorURL,
		AdminUsersURL:   adminusersURL,
		Timeout:         time.Second,
		MaxRetries:      2,
		RetryInterval:   time.Millisecond,
		BreakerFailures: 10,
		BreakerTimeout:  time.Minute,
	}
}

func newMockedClient(t *testing.T, name, baseURL string, cfg Config) *Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(name, baseURL, cfg, httpClient, logger)
}

const gatewayAccountJSON = `{
	"gateway_account_id": 42,
	"external_id": "ga-ext-1",
	"type": "live",
	"payment_provider": "worldpay",
	"allow_moto": false,
	"recurring_enabled": true,
	"provider_switch_enabled": false,
	"disabled": false,
	"worldpay_3ds_flex": {"organisational_unit_id": "5bd9b55e4444761ac0af1c80", "issuer": "5bd9e0e4444dce153428c940", "exemption_engine_enabled": false},
	"gateway_account_credentials": [{
		"external_id": "cred-1",
		"payment_provider": "worldpay",
		"state": "ACTIVE",
		"created_date": "2022-05-03T10:00:00.000Z",
		"credentials": {
			"recurring_customer_initiated": {"merchant_code": "CIT-CODE", "username": "cit-user"}
		}
	}]
}`

func TestConnector_GatewayAccount(t *testing.T) {
	client := newMockedClient(t, "connector", connectorURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/live",
		httpmock.NewStringResponder(http.StatusOK, gatewayAccountJSON))

	account, err := NewConnector(client).GatewayAccount(context.Background(), "svc-1", gatewayaccount.AccountTypeLive)
	require.NoError(t, err)

	assert.Equal(t, int64(42), account.ID)
	assert.True(t, account.IsLive())
	assert.True(t, account.RecurringEnabled)
	assert.True(t, account.Worldpay3DSFlex.IsConfigured())
	require.Len(t, account.Credentials, 1)
	assert.Equal(t, gatewayaccount.CredentialActive, account.Credentials[0].State)
	assert.Equal(t, "CIT-CODE", account.Credentials[0].Credentials.RecurringCustomerInitiated.MerchantCode)
	assert.Nil(t, account.Credentials[0].Credentials.OneOffCustomerInitiated)
}

func TestConnector_StripeAccountSetup(t *testing.T) {
	client := newMockedClient(t, "connector", connectorURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/test/stripe-setup",
		httpmock.NewStringResponder(http.StatusOK, `{"bank_account": true, "director": true, "vat_number": false}`))

	setup, err := NewConnector(client).StripeAccountSetup(context.Background(), "svc-1", gatewayaccount.AccountTypeTest)
	require.NoError(t, err)

	assert.True(t, setup.BankAccount)
	assert.True(t, setup.Director)
	assert.False(t, setup.VATNumber)
	assert.False(t, setup.IsComplete())
}

func TestAdminUsers_Service(t *testing.T) {
	client := newMockedClient(t, "adminusers", adminusersURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, adminusersURL+"/v1/api/services/external/svc-1",
		httpmock.NewStringResponder(http.StatusOK, `{"external_id": "svc-1", "name": "Pay for a parking permit", "current_go_live_stage": "CHOSEN_PSP_STRIPE"}`))

	service, err := NewAdminUsers(client).Service(context.Background(), "svc-1")
	require.NoError(t, err)

	assert.Equal(t, "svc-1", service.ExternalID)
	assert.Equal(t, directory.StageChosenPSPStripe, service.CurrentGoLiveStage)
}

func TestGetJSON_NotFound(t *testing.T) {
	client := newMockedClient(t, "adminusers", adminusersURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, adminusersURL+"/v1/api/services/external/missing",
		httpmock.NewStringResponder(http.StatusNotFound, `{"errors": ["not found"]}`))

	_, err := NewAdminUsers(client).Service(context.Background(), "missing")

	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestGetJSON_ClientErrorIsNotRetried(t *testing.T) {
	client := newMockedClient(t, "connector", connectorURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/live",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"message": "bad"}`))

	_, err := NewConnector(client).GatewayAccount(context.Background(), "svc-1", gatewayaccount.AccountTypeLive)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	client := newMockedClient(t, "connector", connectorURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/test/stripe-setup",
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway").
			Then(httpmock.NewStringResponder(http.StatusOK, `{"bank_account": true}`)))

	setup, err := NewConnector(client).StripeAccountSetup(context.Background(), "svc-1", gatewayaccount.AccountTypeTest)
	require.NoError(t, err)

	assert.True(t, setup.BankAccount)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestGetJSON_GivesUpAfterMaxRetries(t *testing.T) {
	client := newMockedClient(t, "connector", connectorURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/live",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := NewConnector(client).GatewayAccount(context.Background(), "svc-1", gatewayaccount.AccountTypeLive)

	assert.True(t, IsUnavailable(err))
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestGetJSON_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	cfg.BreakerFailures = 2
	client := newMockedClient(t, "connector", connectorURL, cfg)
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/live",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "down"))

	connector := NewConnector(client)
	for i := 0; i < 2; i++ {
		_, err := connector.GatewayAccount(context.Background(), "svc-1", gatewayaccount.AccountTypeLive)
		require.True(t, IsUnavailable(err))
	}

	_, err := connector.GatewayAccount(context.Background(), "svc-1", gatewayaccount.AccountTypeLive)

	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestGetJSON_NotFoundDoesNotTripBreaker(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerFailures = 1
	client := newMockedClient(t, "adminusers", adminusersURL, cfg)
	httpmock.RegisterResponder(http.MethodGet, adminusersURL+"/v1/api/services/external/missing",
		httpmock.NewStringResponder(http.StatusNotFound, "{}"))

	adminusers := NewAdminUsers(client)
	for i := 0; i < 3; i++ {
		_, err := adminusers.Service(context.Background(), "missing")
		require.True(t, IsNotFound(err))
	}
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestGetJSON_PropagatesCorrelationID(t *testing.T) {
	client := newMockedClient(t, "adminusers", adminusersURL, testConfig())
	var seen string
	httpmock.RegisterResponder(http.MethodGet, adminusersURL+"/v1/api/services/external/svc-1",
		func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get(middleware.CorrelationHeader)
			return httpmock.NewStringResponse(http.StatusOK, `{"external_id": "svc-1"}`), nil
		})

	ctx := middleware.WithCorrelationID(context.Background(), "corr-77")
	_, err := NewAdminUsers(client).Service(ctx, "svc-1")
	require.NoError(t, err)

	assert.Equal(t, "corr-77", seen)
}

func TestGetJSON_InvalidBody(t *testing.T) {
	client := newMockedClient(t, "adminusers", adminusersURL, testConfig())
	httpmock.RegisterResponder(http.MethodGet, adminusersURL+"/v1/api/services/external/svc-1",
		httpmock.NewStringResponder(http.StatusOK, `not json`))

	_, err := NewAdminUsers(client).Service(context.Background(), "svc-1")

	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsUnavailable(err))
}

func TestGetJSON_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerFailures = 1
	client := newMockedClient(t, "connector", connectorURL, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/live",
		func(req *http.Request) (*http.Response, error) {
			cancel()
			return nil, errors.New("connection reset by peer")
		})

	connector := NewConnector(client)
	_, err := connector.GatewayAccount(ctx, "svc-1", gatewayaccount.AccountTypeLive)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsUnavailable(err))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	httpmock.RegisterResponder(http.MethodGet, connectorURL+"/v1/api/service/svc-1/account/live",
		httpmock.NewStringResponder(http.StatusOK, gatewayAccountJSON))

	account, err := connector.GatewayAccount(context.Background(), "svc-1", gatewayaccount.AccountTypeLive)
	require.NoError(t, err)
	assert.Equal(t, int64(42), account.ID)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}
