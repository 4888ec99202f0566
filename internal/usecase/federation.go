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

var (
	// ErrEmailAlreadyRegistered indicates the federated email collides with a
	// local password-holding account. The caller must direct the user to the
	// local login instead of linking.
	ErrEmailAlreadyRegistered = errors.New("email already registered with password")
	// ErrMissingFederatedEmail indicates the provider profile carried no email.
	ErrMissingFederatedEmail = errors.New("federated profile has no email")
	// ErrProfileLinkFailure indicates account creation did not yield a usable id.
	ErrProfileLinkFailure = errors.New("federated profile link failed")
)

// FederatedProfile is the subset of the provider's profile the resolver needs.
type FederatedProfile struct {
	Email       string
	DisplayName string
}

// FederationService maps external provider identities onto local accounts.
type FederationService struct {
	accounts port.AccountRepository
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewFederationService constructs a FederationService instance.
func NewFederationService(accounts port.AccountRepository, events port.EventPublisher, log *zap.Logger) *FederationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FederationService{accounts: accounts, events: events, logger: log}
}

// Resolve maps a provider profile to a local account:
//
//  1. An existing account holding a password belongs to local registration;
//     resolution fails with ErrEmailAlreadyRegistered and creates nothing.
//  2. An existing passwordless account is the same federated identity; it is
//     returned unchanged so repeated sign-ins are idempotent.
//  3. Otherwise a fresh federated account is created without a credential.
func (s *FederationService) Resolve(ctx context.Context, profile FederatedProfile) (*domain.Account, error) {
	if profile.Email == "" {
		return nil, ErrMissingFederatedEmail
	}

	existing, err := s.accounts.GetByEmail(ctx, profile.Email)
	if err == nil {
		if existing.HasPassword() {
			return nil, ErrEmailAlreadyRegistered
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup federated email: %w", err)
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = profile.Email
	}

	account, err := s.accounts.Create(ctx, domain.Account{
		Email:       profile.Email,
		DisplayName: displayName,
		Provenance:  domain.ProvenanceGoogle,
	})
	if err != nil {
		// A local registration racing this callback can win the unique
		// index; that is the same conflict the lookup above guards.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create federated account: %w", err)
	}
	if account == nil || account.ID == 0 {
		return nil, ErrProfileLinkFailure
	}

	s.publishRegistered(ctx, account)

	return account, nil
}

func (s *FederationService) publishRegistered(ctx context.Context, account *domain.Account) {
	if s.events == nil {
		return
	}
	event := domain.AccountRegisteredEvent{
		AccountID:          account.ID,
		Email:              account.Email,
		DisplayName:        account.DisplayName,
		RegisteredAt:       time.Now().UTC(),
		RegistrationMethod: string(domain.ProvenanceGoogle),
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish federated registration failed", zap.Error(err))
	}
}
