package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

// ErrEditLimitReached indicates the field consumed all of its allowed edits.
var ErrEditLimitReached = errors.New("edit limit reached for field")

// FieldUpdateResult reports the outcome of a committed (or idempotent)
// field update.
type FieldUpdateResult struct {
	Account   *domain.Account
	Field     domain.ProfileField
	Remaining int
	// Message is the success line shown to the user.
	Message string
	// Advisory is extra guidance when the field is about to run out of
	// edits, empty otherwise.
	Advisory string
	// Idempotent is true when the submitted value matched the stored one
	// and no edit was consumed.
	Idempotent bool
}

// ProfileService applies guarded edits to profile fields.
type ProfileService struct {
	accounts port.AccountRepository
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(accounts port.AccountRepository, events port.EventPublisher, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{accounts: accounts, events: events, logger: log}
}

// UpdateField runs the mutation guard for one field. Checks short-circuit in
// order: allow-list, edit budget, format, field rules, idempotence. Only then
// does the conditional store update run, so a racing request can never push a
// counter past domain.MaxFieldEdits.
func (s *ProfileService) UpdateField(ctx context.Context, accountID int64, fieldName, rawValue string) (*FieldUpdateResult, error) {
	if fieldName == "" || rawValue == "" {
		return nil, &domain.ValidationError{Message: "Campo y valor son obligatorios."}
	}

	field, err := domain.ParseProfileField(fieldName)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if account.EditCount(field) >= domain.MaxFieldEdits {
		return nil, ErrEditLimitReached
	}

	value, err := field.Parse(rawValue)
	if err != nil {
		return nil, err
	}

	// Re-submitting the stored value is free: no write, no counter change.
	if value.Equals(account) {
		remaining := domain.MaxFieldEdits - account.EditCount(field)
		return &FieldUpdateResult{
			Account:    account,
			Field:      field,
			Remaining:  remaining,
			Message:    fmt.Sprintf("%s actualizado correctamente", field.Label()),
			Advisory:   advisoryFor(remaining),
			Idempotent: true,
		}, nil
	}

	counter, err := s.accounts.ApplyFieldUpdate(ctx, accountID, value)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditLimitReached):
			return nil, ErrEditLimitReached
		case errors.Is(err, repository.ErrNotFound):
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("apply field update: %w", err)
	}

	value.ApplyTo(account)
	switch field {
	case domain.FieldDisplayName:
		account.DisplayNameEdits = counter
	case domain.FieldPhone:
		account.PhoneEdits = counter
	case domain.FieldBirthDate:
		account.BirthDateEdits = counter
	}

	remaining := domain.MaxFieldEdits - counter
	s.publishFieldUpdated(ctx, accountID, field, remaining)

	return &FieldUpdateResult{
		Account:   account,
		Field:     field,
		Remaining: remaining,
		Message:   fmt.Sprintf("%s actualizado correctamente", field.Label()),
		Advisory:  advisoryFor(remaining),
	}, nil
}

func advisoryFor(remaining int) string {
	switch remaining {
	case 1:
		return "Te queda 1 edición para este campo."
	case 0:
		return "Has alcanzado el límite de ediciones para este campo."
	}
	return ""
}

func (s *ProfileService) publishFieldUpdated(ctx context.Context, accountID int64, field domain.ProfileField, remaining int) {
	if s.events == nil {
		return
	}
	event := domain.ProfileFieldUpdatedEvent{
		AccountID:      accountID,
		Field:          field,
		RemainingEdits: remaining,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.events.PublishProfileFieldUpdated(ctx, event); err != nil {
		s.logger.Warn("publish field update failed", zap.Error(err))
	}
}
