// Package onboarding fetches a service's gateway account from upstream and derives its onboarding
// tasks and dashboard status.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"selfservice/internal/common/events"
	"selfservice/internal/common/middleware"
	"selfservice/internal/directory"
	"selfservice/internal/gatewayaccount"
	"selfservice/internal/serviceview"
	"selfservice/internal/tasks"
)

// AccountFetcher reads gateway accounts
type AccountFetcher interface {
	GatewayAccount(ctx context.Context, serviceExternalID string, accountType gatewayaccount.AccountType) (gatewayaccount.GatewayAccount, error)
}

// StripeSetupFetcher reads Stripe onboarding progress
type StripeSetupFetcher interface {
	StripeAccountSetup(ctx context.Context, serviceExternalID string, accountType gatewayaccount.AccountType) (tasks.StripeAccountSetup, error)
}

// ServiceFetcher reads services
type ServiceFetcher interface {
	Service(ctx context.Context, serviceExternalID string) (directory.Service, error)
}

// AccountRef identifies a service's gateway account
type AccountRef struct {
	ServiceExternalID string                     `validate:"required,alphanum,max=64"`
	AccountType       gatewayaccount.AccountType `validate:"required,oneof=test live"`
}

// Service provides onboarding operations
type Service struct {
	accounts  AccountFetcher
	setups    StripeSetupFetcher
	services  ServiceFetcher
	resolver  *serviceview.Resolver
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewService creates a new onboarding service
func NewService(
	accounts AccountFetcher,
	setups StripeSetupFetcher,
	services ServiceFetcher,
	resolver *serviceview.Resolver,
	publisher events.EventPublisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:  accounts,
		setups:    setups,
		services:  services,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

// WorldpayTasks returns the Worldpay onboarding tasks for an account
func (s *Service) WorldpayTasks(ctx context.Context, ref AccountRef) (tasks.Tasks, error) {
	account, err := s.accounts.GatewayAccount(ctx, ref.ServiceExternalID, ref.AccountType)
	if err != nil {
		return tasks.Tasks{}, err
	}

	return tasks.WorldpayTasks(account, ref.ServiceExternalID), nil
}

// StripeTasks returns the Stripe onboarding tasks for an account
func (s *Service) StripeTasks(ctx context.Context, ref AccountRef) (tasks.Tasks, error) {
	var (
		account gatewayaccount.GatewayAccount
		setup   tasks.StripeAccountSetup
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.accounts.GatewayAccount(gctx, ref.ServiceExternalID, ref.AccountType)
		return err
	})
	g.Go(func() error {
		var err error
		setup, err = s.setups.StripeAccountSetup(gctx, ref.ServiceExternalID, ref.AccountType)
		return err
	})
	if err := g.Wait(); err != nil {
		return tasks.Tasks{}, err
	}

	result, err := tasks.StripeTasks(account, setup, ref.ServiceExternalID)
	if err != nil {
		s.invalidConfiguration(ctx, ref, account, err)
		return tasks.Tasks{}, fmt.Errorf("deriving stripe tasks: %w", err)
	}

	s.logger.Debug("stripe tasks derived",
		"service_external_id", ref.ServiceExternalID,
		"gateway_account_id", account.ID,
		"incomplete_tasks", result.IncompleteTasks,
	)

	return result, nil
}

// ServiceStatus returns the dashboard status of a service's account
func (s *Service) ServiceStatus(ctx context.Context, ref AccountRef) (serviceview.View, error) {
	var (
		service directory.Service
		account gatewayaccount.GatewayAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		service, err = s.services.Service(gctx, ref.ServiceExternalID)
		return err
	})
	g.Go(func() error {
		var err error
		account, err = s.accounts.GatewayAccount(gctx, ref.ServiceExternalID, ref.AccountType)
		return err
	})
	if err := g.Wait(); err != nil {
		return serviceview.View{}, err
	}

	return s.resolver.Resolve(ctx, service, account), nil
}

// Credential returns one credential of an account
func (s *Service) Credential(ctx context.Context, ref AccountRef, credentialExternalID string) (*gatewayaccount.Credential, error) {
	account, err := s.accounts.GatewayAccount(ctx, ref.ServiceExternalID, ref.AccountType)
	if err != nil {
		return nil, err
	}

	return account.FindCredentialByExternalID(credentialExternalID)
}

// SwitchingCredential returns the credential an account is switching to
func (s *Service) SwitchingCredential(ctx context.Context, ref AccountRef) (*gatewayaccount.Credential, error) {
	account, err := s.accounts.GatewayAccount(ctx, ref.ServiceExternalID, ref.AccountType)
	if err != nil {
		return nil, err
	}

	credential, err := account.SwitchingCredential()
	if err != nil {
		s.invalidConfiguration(ctx, ref, account, err)
		return nil, err
	}
	return credential, nil
}

// invalidConfiguration logs and publishes a broken credential invariant. Publishing is best effort.
func (s *Service) invalidConfiguration(ctx context.Context, ref AccountRef, account gatewayaccount.GatewayAccount, err error) {
	var configErr *gatewayaccount.InvalidConfigurationError
	if !errors.As(err, &configErr) {
		return
	}

	s.logger.Error("invalid gateway account configuration",
		"error", err,
		"service_external_id", ref.ServiceExternalID,
		"gateway_account_id", configErr.GatewayAccountID,
		"count", configErr.Count,
		"correlation_id", middleware.GetCorrelationID(ctx),
	)

	event, evErr := events.NewEvent(
		events.EventInvalidConfiguration,
		ref.ServiceExternalID,
		events.AggregateGatewayAccount,
		strconv.FormatInt(account.ID, 10),
		events.InvalidConfigurationData{
			ServiceExternalID: ref.ServiceExternalID,
			GatewayAccountID:  configErr.GatewayAccountID,
			Count:             configErr.Count,
			Reason:            configErr.Reason,
		},
	)
	if evErr != nil {
		s.logger.Warn("failed to create event", "error", evErr, "type", events.EventInvalidConfiguration)
		return
	}
	event.WithCorrelation(middleware.GetCorrelationID(ctx))

	if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
		s.logger.Warn("failed to publish event", "error", pubErr, "event_id", event.ID)
	}
}
