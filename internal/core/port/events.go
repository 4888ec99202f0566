package port

import (
	"context"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishProfileFieldUpdated(ctx context.Context, event domain.ProfileFieldUpdatedEvent) error
	PublishProfilePhotoChanged(ctx context.Context, event domain.ProfilePhotoChangedEvent) error
}
