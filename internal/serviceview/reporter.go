package serviceview

import (
	"context"
	"log/slog"
	"strconv"

	"selfservice/internal/common/events"
	"selfservice/internal/common/middleware"
	"selfservice/internal/directory"
	"selfservice/internal/gatewayaccount"
)

// LogReporter logs unresolved statuses as errors.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a new log reporter
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Unresolved implements Reporter
func (r *LogReporter) Unresolved(ctx context.Context, service directory.Service, account gatewayaccount.GatewayAccount, reason string) {
	r.logger.Error("unable to resolve service status",
		"reason", reason,
		"service_external_id", service.ExternalID,
		"gateway_account_id", account.ID,
		"account_type", account.Type,
		"payment_provider", account.PaymentProvider,
		"current_go_live_stage", service.CurrentGoLiveStage,
		"correlation_id", middleware.GetCorrelationID(ctx),
	)
}

// EventReporter publishes unresolved statuses as events.
type EventReporter struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewEventReporter creates a new event reporter
func NewEventReporter(publisher events.EventPublisher, logger *slog.Logger) *EventReporter {
	return &EventReporter{publisher: publisher, logger: logger}
}

// Unresolved implements Reporter. Publishing failures are logged and otherwise ignored.
func (r *EventReporter) Unresolved(ctx context.Context, service directory.Service, account gatewayaccount.GatewayAccount, reason string) {
	data := events.ServiceStatusUnresolvedData{
		ServiceExternalID:  service.ExternalID,
		GatewayAccountID:   account.ID,
		AccountType:        string(account.Type),
		PaymentProvider:    string(account.PaymentProvider),
		CurrentGoLiveStage: string(service.CurrentGoLiveStage),
		Reason:             reason,
	}

	event, err := events.NewEvent(
		events.EventServiceStatusUnresolved,
		service.ExternalID,
		events.AggregateGatewayAccount,
		strconv.FormatInt(account.ID, 10),
		data,
	)
	if err != nil {
		r.logger.Warn("failed to create event", "error", err, "type", events.EventServiceStatusUnresolved)
		return
	}
	event.WithCorrelation(middleware.GetCorrelationID(ctx))

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("failed to publish event", "error", err, "event_id", event.ID)
	}
}

// Reporters fans out to several reporters in order.
type Reporters []Reporter

// Unresolved implements Reporter
func (rs Reporters) Unresolved(ctx context.Context, service directory.Service, account gatewayaccount.GatewayAccount, reason string) {
	for _, r := range rs {
		r.Unresolved(ctx, service, account, reason)
	}
}
