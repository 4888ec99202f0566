package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
)

// memAccounts is an in-memory AccountRepository honoring the same conditional
// update contract as the Postgres adapter.
type memAccounts struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Account

	// createID forces the id assigned by Create; used to simulate a store
	// that fails to yield a usable id.
	createID  *int64
	createErr error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{nextID: 1, byID: make(map[int64]*domain.Account)}
}

func (m *memAccounts) add(account domain.Account) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		account.ID = m.nextID
		m.nextID++
	} else if account.ID >= m.nextID {
		m.nextID = account.ID + 1
	}
	stored := account
	m.byID[stored.ID] = &stored
	out := stored
	return &out
}

func (m *memAccounts) Create(_ context.Context, account domain.Account) (*domain.Account, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.createID != nil {
		account.ID = *m.createID
		stored := account
		m.mu.Lock()
		m.byID[stored.ID] = &stored
		m.mu.Unlock()
		out := stored
		return &out, nil
	}
	return m.add(account), nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *account
	return &out, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byID {
		if account.Email == email {
			out := *account
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) GetByPhone(_ context.Context, phone int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byID {
		if account.Phone != nil && *account.Phone == phone {
			out := *account
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) ApplyFieldUpdate(_ context.Context, id int64, value domain.FieldValue) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if account.EditCount(value.Field) >= domain.MaxFieldEdits {
		return 0, repository.ErrEditLimitReached
	}
	value.ApplyTo(account)
	var counter int
	switch value.Field {
	case domain.FieldDisplayName:
		account.DisplayNameEdits++
		counter = account.DisplayNameEdits
	case domain.FieldPhone:
		account.PhoneEdits++
		counter = account.PhoneEdits
	case domain.FieldBirthDate:
		account.BirthDateEdits++
		counter = account.BirthDateEdits
	}
	return counter, nil
}

func (m *memAccounts) UpdatePhotoPath(_ context.Context, id int64, path *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PhotoPath = path
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	registered   []domain.AccountRegisteredEvent
	fieldUpdates []domain.ProfileFieldUpdatedEvent
	photoChanges []domain.ProfilePhotoChangedEvent
}

func (p *recordingPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishProfileFieldUpdated(_ context.Context, event domain.ProfileFieldUpdatedEvent) error {
	p.fieldUpdates = append(p.fieldUpdates, event)
	return nil
}

func (p *recordingPublisher) PublishProfilePhotoChanged(_ context.Context, event domain.ProfilePhotoChangedEvent) error {
	p.photoChanges = append(p.photoChanges, event)
	return nil
}

// memSessions is an in-memory SessionStore. TTLs are recorded but not enforced.
type memSessions struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newMemSessions() *memSessions {
	return &memSessions{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memSessions) Save(_ context.Context, ref, email string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[ref] = email
	m.ttls[ref] = ttl
	return nil
}

func (m *memSessions) Lookup(_ context.Context, ref string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.values[ref]
	if !ok {
		return "", repository.ErrNotFound
	}
	return email, nil
}

func (m *memSessions) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, ref)
	return nil
}

// memRateLimit counts attempts without a real sliding window.
type memRateLimit struct {
	mu       sync.Mutex
	attempts map[string]int
}

func newMemRateLimit() *memRateLimit {
	return &memRateLimit{attempts: make(map[string]int)}
}

func (m *memRateLimit) RecordAttempt(_ context.Context, identifier string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[identifier]++
	return nil
}

func (m *memRateLimit) CountAttempts(_ context.Context, identifier string, _ time.Duration, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[identifier], nil
}

func (m *memRateLimit) TrimWindow(_ context.Context, _ string, _ time.Duration, _ time.Time) error {
	return nil
}
