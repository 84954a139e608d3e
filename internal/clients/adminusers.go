package clients

import (
	"context"
	"fmt"
	"net/url"

	"selfservice/internal/directory"
)

// AdminUsers reads services from the adminusers API.
type AdminUsers struct {
	client *Client
}

// NewAdminUsers creates a new adminusers client
func NewAdminUsers(client *Client) *AdminUsers {
	return &AdminUsers{client: client}
}

// Service returns a service by external id
func (a *AdminUsers) Service(ctx context.Context, serviceExternalID string) (directory.Service, error) {
	var service directory.Service
	path := "/v1/api/services/external/" + url.PathEscape(serviceExternalID)
	if err := a.client.GetJSON(ctx, path, &service); err != nil {
		return directory.Service{}, fmt.Errorf("getting service: %w", err)
	}
	return service, nil
}
