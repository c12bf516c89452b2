package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/events"
)

func TestAuditService_LogsAccountEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewBus(nil)
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:        "e1",
		Type:      events.EventUserCreated,
		UserID:    "u1",
		Timestamp: time.Unix(1000, 0).UTC(),
		Payload:   events.UserCreatedPayload{Email: "a@example.com", Role: domain.RoleEditor, Source: "admin"},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserPasswordChanged, UserID: "u1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserDeleted, UserID: "u1", Payload: events.UserDeletedPayload{Self: true}}))
	// debug level, filtered out
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserLoggedIn, UserID: "u1"}))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "UserCreated", entries[0].Message)
	assert.Equal(t, "audit", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "EDITOR", fields["role"])
	assert.Equal(t, "admin", fields["source"])
	assert.NotContains(t, fields, "email")

	assert.Equal(t, "UserPasswordChanged", entries[1].Message)
	assert.Equal(t, "UserDeleted", entries[2].Message)
	assert.Equal(t, true, entries[2].ContextMap()["self"])
}
