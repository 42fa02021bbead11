package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

func TestNotificationServiceHandlers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		WebhookURL: "http://hooks.local/tickets",
	}).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: "t-1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: "t-1",
		Payload:  events.TicketUpdatedPayload{},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventTicketsImported,
		Payload: events.TicketsImportedPayload{Source: "tickets.csv", Count: 2},
	}))

	assert.Equal(t, 1, logs.FilterMessage("TicketCreated").Len())
	assert.Zero(t, logs.FilterMessage("TicketUpdated").Len(), "updates without changes are not announced")
	assert.Equal(t, 1, logs.FilterMessage("TicketsImported").Len())
	assert.Equal(t, 2, logs.FilterMessage("sendWebhookNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())
}
