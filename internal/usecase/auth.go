package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"go.uber.org/zap"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/logger"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/security"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	// Deliberately covers "unknown email", "wrong password" and "federated
	// account without a password" so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates a registration attempt against an email that
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrTooManyAttempts indicates the login rate-limit window is exhausted.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// RegisterInput carries the local registration form.
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
	Phone       *int64
	BirthDate   *time.Time
}

// AuthService coordinates local registration and credential login.
type AuthService struct {
	cfg       *config.AppConfig
	accounts  port.AccountRepository
	attempts  port.RateLimitStore
	tokens    *security.TokenIssuer
	passwords *security.PasswordValidator
	events    port.EventPublisher
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg *config.AppConfig,
	accounts port.AccountRepository,
	attempts port.RateLimitStore,
	tokens *security.TokenIssuer,
	passwords *security.PasswordValidator,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		cfg:       cfg,
		accounts:  accounts,
		attempts:  attempts,
		tokens:    tokens,
		passwords: passwords,
		events:    events,
		logger:    log,
	}
}

// Register creates a local account, hashes the credential and issues the
// first bearer token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Account, string, error) {
	if input.Email == "" || input.DisplayName == "" || input.Password == "" {
		return nil, "", &domain.ValidationError{Message: "Todos los campos obligatorios deben estar completos."}
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, "", &domain.ValidationError{Message: "El correo electrónico no es válido."}
	}
	if _, err := domain.FieldDisplayName.Parse(input.DisplayName); err != nil {
		return nil, "", err
	}
	if err := s.passwords.Validate(input.Password); err != nil {
		return nil, "", err
	}

	if existing, err := s.accounts.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, domain.Account{
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		Phone:        input.Phone,
		BirthDate:    input.BirthDate,
		PasswordHash: &hash,
		Provenance:   domain.ProvenanceLocal,
	})
	if err != nil {
		// The read-then-insert above can race another registration of the
		// same email; the unique index catches what GetByEmail missed.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	token, err := s.tokens.Issue(domain.PrincipalOf(account))
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.publishRegistered(ctx, account, "email")

	return account, token, nil
}

// Login verifies a local credential and issues a bearer token. Every failure
// path degrades to ErrInvalidCredentials except the rate limit.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.checkRateLimit(ctx, email, now); err != nil {
		return nil, "", err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordAttempt(ctx, email, now)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup account: %w", err)
	}

	// Accounts created purely via federation hold no local credential and
	// cannot log in with a password.
	if !account.HasPassword() {
		s.recordAttempt(ctx, email, now)
		return nil, "", ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, *account.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordAttempt(ctx, email, now)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.PrincipalOf(account))
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return account, token, nil
}

// GetProfile loads an account by id.
func (s *AuthService) GetProfile(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// CheckPhone reports whether a phone number already belongs to an account.
func (s *AuthService) CheckPhone(ctx context.Context, raw string) (bool, error) {
	value, err := domain.FieldPhone.Parse(raw)
	if err != nil {
		return false, err
	}
	phone, _ := value.Arg().(int64)

	if _, err := s.accounts.GetByPhone(ctx, phone); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup phone: %w", err)
	}
	return true, nil
}

func (s *AuthService) checkRateLimit(ctx context.Context, email string, now time.Time) error {
	if s.attempts == nil || s.cfg.RateLimit.LoginMaxAttempts <= 0 {
		return nil
	}

	window := s.cfg.RateLimit.WindowDuration
	if err := s.attempts.TrimWindow(ctx, email, window, now); err != nil {
		s.logger.Warn("trim login window failed", zap.Error(err))
		return nil
	}
	count, err := s.attempts.CountAttempts(ctx, email, window, now)
	if err != nil {
		s.logger.Warn("count login attempts failed", zap.Error(err))
		return nil
	}
	if count >= s.cfg.RateLimit.LoginMaxAttempts {
		s.logger.Warn("login rate limit hit", zap.String("email", logger.MaskEmail(email)))
		return ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) recordAttempt(ctx context.Context, email string, now time.Time) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.RecordAttempt(ctx, email, now); err != nil {
		s.logger.Warn("record login attempt failed", zap.Error(err))
	}
}

func (s *AuthService) publishRegistered(ctx context.Context, account *domain.Account, method string) {
	if s.events == nil {
		return
	}
	event := domain.AccountRegisteredEvent{
		AccountID:          account.ID,
		Email:              account.Email,
		DisplayName:        account.DisplayName,
		RegisteredAt:       time.Now().UTC(),
		RegistrationMethod: method,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered failed", zap.Error(err))
	}
}
