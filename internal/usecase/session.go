package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

// ErrSessionNotFound indicates the session reference is unknown, expired, or
// points at an account that no longer exists.
var ErrSessionNotFound = errors.New("session not found")

// SessionService manages the stateful session used by federated sign-in.
// The store keeps only the account email; the account is re-resolved on every
// request so edits and deletions take effect immediately.
type SessionService struct {
	store    port.SessionStore
	accounts port.AccountRepository
	cfg      config.SessionSettings
	logger   *zap.Logger
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(store port.SessionStore, accounts port.AccountRepository, cfg config.SessionSettings, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{store: store, accounts: accounts, cfg: cfg, logger: log}
}

// Establish creates a fresh opaque session reference for the account.
func (s *SessionService) Establish(ctx context.Context, account *domain.Account) (string, error) {
	ref := uuid.NewString()
	if err := s.store.Save(ctx, ref, account.Email, s.cfg.TTL); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return ref, nil
}

// Resolve turns a session reference back into the current account record.
func (s *SessionService) Resolve(ctx context.Context, ref string) (*domain.Account, error) {
	if ref == "" {
		return nil, ErrSessionNotFound
	}

	email, err := s.store.Lookup(ctx, ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The account vanished after the session was cut; the ref is dead.
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("resolve session account: %w", err)
	}

	return account, nil
}

// Destroy removes the session reference. Unknown refs are not an error.
func (s *SessionService) Destroy(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.store.Delete(ctx, ref); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
