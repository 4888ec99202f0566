package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, accountID int64, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: strconv.FormatInt(accountID, 10),
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(envelope.AccountID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes identity.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID          int64          `json:"account_id"`
		Email              string         `json:"email"`
		DisplayName        string         `json:"display_name"`
		RegisteredAt       time.Time      `json:"registered_at"`
		RegistrationMethod string         `json:"registration_method"`
		Metadata           map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:          event.AccountID,
		Email:              event.Email,
		DisplayName:        event.DisplayName,
		RegisteredAt:       event.RegisteredAt.UTC(),
		RegistrationMethod: event.RegistrationMethod,
		Metadata:           event.Metadata,
	}

	return p.publish(ctx, event.EventID, "identity.account.registered", event.AccountID, event.RegisteredAt, payload)
}

// PublishProfileFieldUpdated publishes identity.profile.field_updated events.
func (p *EventPublisher) PublishProfileFieldUpdated(ctx context.Context, event domain.ProfileFieldUpdatedEvent) error {
	payload := struct {
		AccountID      int64          `json:"account_id"`
		Field          string         `json:"field"`
		RemainingEdits int            `json:"remaining_edits"`
		UpdatedAt      time.Time      `json:"updated_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:      event.AccountID,
		Field:          string(event.Field),
		RemainingEdits: event.RemainingEdits,
		UpdatedAt:      event.UpdatedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "identity.profile.field_updated", event.AccountID, event.UpdatedAt, payload)
}

// PublishProfilePhotoChanged publishes identity.profile.photo_changed events.
func (p *EventPublisher) PublishProfilePhotoChanged(ctx context.Context, event domain.ProfilePhotoChangedEvent) error {
	payload := struct {
		AccountID int64          `json:"account_id"`
		PhotoPath *string        `json:"photo_path,omitempty"`
		Deleted   bool           `json:"deleted"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		PhotoPath: event.PhotoPath,
		Deleted:   event.Deleted,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "identity.profile.photo_changed", event.AccountID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
