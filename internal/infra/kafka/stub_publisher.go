package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, accountID int64, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Int64("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs identity.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"account_id":          event.AccountID,
		"email":               event.Email,
		"display_name":        event.DisplayName,
		"registered_at":       event.RegisteredAt,
		"registration_method": event.RegistrationMethod,
		"metadata":            event.Metadata,
	}
	p.logEvent("identity.account.registered", event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishProfileFieldUpdated logs identity.profile.field_updated events.
func (p *StubPublisher) PublishProfileFieldUpdated(_ context.Context, event domain.ProfileFieldUpdatedEvent) error {
	payload := map[string]any{
		"account_id":      event.AccountID,
		"field":           string(event.Field),
		"remaining_edits": event.RemainingEdits,
		"updated_at":      event.UpdatedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent("identity.profile.field_updated", event.AccountID, event.UpdatedAt, payload)
	return nil
}

// PublishProfilePhotoChanged logs identity.profile.photo_changed events.
func (p *StubPublisher) PublishProfilePhotoChanged(_ context.Context, event domain.ProfilePhotoChangedEvent) error {
	payload := map[string]any{
		"account_id": event.AccountID,
		"photo_path": event.PhotoPath,
		"deleted":    event.Deleted,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("identity.profile.photo_changed", event.AccountID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
