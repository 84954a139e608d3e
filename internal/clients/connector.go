package clients

import (
	"context"
	"fmt"
	"net/url"

	"selfservice/internal/gatewayaccount"
	"selfservice/internal/tasks"
)

// Connector reads gateway accounts from the connector API.
type Connector struct {
	client *Client
}

// NewConnector creates a new connector client
func NewConnector(client *Client) *Connector {
	return &Connector{client: client}
}

// GatewayAccount returns the service's gateway account of the given type
func (c *Connector) GatewayAccount(ctx context.Context, serviceExternalID string, accountType gatewayaccount.AccountType) (gatewayaccount.GatewayAccount, error) {
	var account gatewayaccount.GatewayAccount
	if err := c.client.GetJSON(ctx, accountPath(serviceExternalID, accountType), &account); err != nil {
		return gatewayaccount.GatewayAccount{}, fmt.Errorf("getting gateway account: %w", err)
	}
	return account, nil
}

// StripeAccountSetup returns the Stripe onboarding progress of the service's gateway account
func (c *Connector) StripeAccountSetup(ctx context.Context, serviceExternalID string, accountType gatewayaccount.AccountType) (tasks.StripeAccountSetup, error) {
	var setup tasks.StripeAccountSetup
	if err := c.client.GetJSON(ctx, accountPath(serviceExternalID, accountType)+"/stripe-setup", &setup); err != nil {
		return tasks.StripeAccountSetup{}, fmt.Errorf("getting stripe account setup: %w", err)
	}
	return setup, nil
}

func accountPath(serviceExternalID string, accountType gatewayaccount.AccountType) string {
	return fmt.Sprintf("/v1/api/service/%s/account/%s",
		url.PathEscape(serviceExternalID), url.PathEscape(string(accountType)))
}
