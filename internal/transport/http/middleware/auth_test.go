package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/core/port"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/security"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

type stubSessionStore struct {
	values map[string]string
}

func (s *stubSessionStore) Save(_ context.Context, ref, email string, _ time.Duration) error {
	s.values[ref] = email
	return nil
}

func (s *stubSessionStore) Lookup(_ context.Context, ref string) (string, error) {
	email, ok := s.values[ref]
	if !ok {
		return "", repository.ErrNotFound
	}
	return email, nil
}

func (s *stubSessionStore) Delete(_ context.Context, ref string) error {
	delete(s.values, ref)
	return nil
}

type stubAccounts struct {
	account *domain.Account
}

func (s *stubAccounts) Create(context.Context, domain.Account) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	if s.account != nil && s.account.ID == id {
		return s.account, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	if s.account != nil && s.account.Email == email {
		return s.account, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) GetByPhone(context.Context, int64) (*domain.Account, error) {
	return nil, repository.ErrNotFound
}

func (s *stubAccounts) ApplyFieldUpdate(context.Context, int64, domain.FieldValue) (int, error) {
	return 0, repository.ErrNotFound
}

func (s *stubAccounts) UpdatePhotoPath(context.Context, int64, *string) error {
	return nil
}

var _ port.AccountRepository = (*stubAccounts)(nil)
var _ port.SessionStore = (*stubSessionStore)(nil)

func newTestAuthenticator(t *testing.T, accounts *stubAccounts, store *stubSessionStore) *Authenticator {
	t.Helper()

	issuer, err := security.NewTokenIssuer("middleware-test-secret", "identity-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	sessions := usecase.NewSessionService(store, accounts, config.SessionSettings{TTL: time.Hour}, nil)
	return NewAuthenticator(issuer, sessions, "identity_session")
}

func performRequest(auth gin.HandlerFunc, configure func(*http.Request)) (*httptest.ResponseRecorder, *domain.Principal) {
	gin.SetMode(gin.TestMode)

	var captured *domain.Principal
	router := gin.New()
	router.GET("/protected", auth, func(c *gin.Context) {
		if principal, ok := PrincipalFromContext(c); ok {
			captured = &principal
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if configure != nil {
		configure(req)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder, captured
}

func TestRequireBearerAcceptsValidToken(t *testing.T) {
	accounts := &stubAccounts{}
	store := &stubSessionStore{values: map[string]string{}}
	authenticator := newTestAuthenticator(t, accounts, store)

	issuer, err := security.NewTokenIssuer("middleware-test-secret", "identity-service", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}
	token, err := issuer.Issue(domain.Principal{ID: 7, Email: "ana@example.com", DisplayName: "Ana Flores"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	recorder, principal := performRequest(authenticator.RequireBearer(), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if principal == nil || principal.ID != 7 {
		t.Fatalf("principal = %+v, want id 7", principal)
	}
}

func TestRequireBearerRejectionsAreUniform(t *testing.T) {
	authenticator := newTestAuthenticator(t, &stubAccounts{}, &stubSessionStore{values: map[string]string{}})

	cases := []struct {
		name      string
		configure func(*http.Request)
	}{
		{"missing header", nil},
		{"malformed header", func(req *http.Request) { req.Header.Set("Authorization", "Token abc") }},
		{"garbage token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer not.a.jwt") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder, principal := performRequest(authenticator.RequireBearer(), tc.configure)
			if recorder.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", recorder.Code)
			}
			if principal != nil {
				t.Fatal("principal attached on rejected request")
			}
			if body := recorder.Body.String(); !strings.Contains(body, unauthenticatedMessage) {
				t.Fatalf("body %q missing generic message", body)
			}
		})
	}
}

func TestRejectionBodyUsesMessageKey(t *testing.T) {
	authenticator := newTestAuthenticator(t, &stubAccounts{}, &stubSessionStore{values: map[string]string{}})

	recorder, _ := performRequest(authenticator.RequireBearer(), nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal body %q: %v", recorder.Body.String(), err)
	}
	if payload["message"] != unauthenticatedMessage {
		t.Fatalf("body %q message = %v, want %q", recorder.Body.String(), payload["message"], unauthenticatedMessage)
	}
	if _, ok := payload["error"]; ok {
		t.Fatalf("body %q carries an error key, want the handlers' message shape", recorder.Body.String())
	}
}

func TestRequireSessionResolvesAccount(t *testing.T) {
	account := &domain.Account{ID: 9, Email: "maria@example.com", DisplayName: "María Rojas"}
	store := &stubSessionStore{values: map[string]string{"ref-1": "maria@example.com"}}
	authenticator := newTestAuthenticator(t, &stubAccounts{account: account}, store)

	recorder, principal := performRequest(authenticator.RequireSession(), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "identity_session", Value: "ref-1"})
	})

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if principal == nil || principal.ID != 9 {
		t.Fatalf("principal = %+v, want id 9", principal)
	}
}

func TestRequireSessionRejectsUnknownRef(t *testing.T) {
	authenticator := newTestAuthenticator(t, &stubAccounts{}, &stubSessionStore{values: map[string]string{}})

	recorder, _ := performRequest(authenticator.RequireSession(), func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "identity_session", Value: "missing"})
	})
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}

	recorder, _ = performRequest(authenticator.RequireSession(), nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("cookieless status = %d, want 401", recorder.Code)
	}
}
