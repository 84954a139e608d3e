package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfservice/internal/common/events"
)

func TestSubject(t *testing.T) {
	event, err := events.NewEvent(events.EventInvalidConfiguration, "svc", events.AggregateGatewayAccount, "1", nil)
	require.NoError(t, err)

	assert.Equal(t, "events.selfservice.account.invalid_configuration", Subject(event))
}

func TestDiagnosticsStream(t *testing.T) {
	cfg := DiagnosticsStream("SELFSERVICE")

	assert.Equal(t, "SELFSERVICE", cfg.Name)
	assert.Equal(t, []string{"events.selfservice.>"}, cfg.Subjects)
	assert.Equal(t, 1, cfg.Replicas)
}
