package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event represents a domain event envelope
type Event struct {
	ID            string          `json:"event_id"`
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id"`
	ServiceID     string          `json:"service_external_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event
func NewEvent(eventType, serviceID, aggregateType, aggregateID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            ulid.Make().String(),
		Type:          eventType,
		Version:       1,
		OccurredAt:    time.Now().UTC(),
		ServiceID:     serviceID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Data:          dataBytes,
	}, nil
}

// WithCorrelation sets the correlation ID
func (e *Event) WithCorrelation(correlationID string) *Event {
	e.CorrelationID = correlationID
	return e
}

// DecodeData decodes the event data into a struct
func (e *Event) DecodeData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// EventPublisher publishes events to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Event types
const (
	EventServiceStatusUnresolved = "selfservice.service_status.unresolved"
	EventInvalidConfiguration    = "selfservice.account.invalid_configuration"
)

// Aggregate types
const (
	AggregateGatewayAccount = "gateway_account"
)

// ServiceStatusUnresolvedData is the data for selfservice.service_status.unresolved events
type ServiceStatusUnresolvedData struct {
	ServiceExternalID  string `json:"service_external_id"`
	GatewayAccountID   int64  `json:"gateway_account_id"`
	AccountType        string `json:"account_type"`
	PaymentProvider    string `json:"payment_provider"`
	CurrentGoLiveStage string `json:"current_go_live_stage"`
	Reason             string `json:"reason"`
}

// InvalidConfigurationData is the data for selfservice.account.invalid_configuration events
type InvalidConfigurationData struct {
	ServiceExternalID string `json:"service_external_id"`
	GatewayAccountID  int64  `json:"gateway_account_id"`
	Count             int    `json:"count"`
	Reason            string `json:"reason"`
}

// NopPublisher discards events. Used when NATS is disabled.
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(ctx context.Context, event *Event) error {
	return nil
}
