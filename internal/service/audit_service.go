package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/events"
)

// AuditService writes an audit trail of account events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserCreated, a.handleUserCreated)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.handleUserDeleted)
	a.dispatcher.Subscribe(events.EventUserPasswordChanged, a.handlePasswordChanged)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleLoggedIn)
}

func (a *AuditService) handleUserCreated(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if p, ok := event.Payload.(events.UserCreatedPayload); ok {
		fields = append(fields,
			zap.String("role", string(p.Role)),
			zap.Bool("is_admin", p.IsAdmin),
			zap.String("source", p.Source))
	}
	a.logger.Info("UserCreated", fields...)
	return nil
}

func (a *AuditService) handleUserDeleted(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if p, ok := event.Payload.(events.UserDeletedPayload); ok {
		fields = append(fields, zap.Bool("self", p.Self))
	}
	a.logger.Info("UserDeleted", fields...)
	return nil
}

func (a *AuditService) handlePasswordChanged(_ context.Context, event events.Event) error {
	a.logger.Info("UserPasswordChanged", a.baseFields(event)...)
	return nil
}

func (a *AuditService) handleLoggedIn(_ context.Context, event events.Event) error {
	a.logger.Debug("UserLoggedIn", a.baseFields(event)...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("actor_id", event.ActorID),
		zap.Time("at", event.Timestamp),
	}
}
