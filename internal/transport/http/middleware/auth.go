package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/security"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

// unauthenticatedMessage is deliberately identical for every failure mode so
// callers cannot distinguish a missing credential from an invalid one.
const unauthenticatedMessage = "Usuario no autenticado"

// ErrorResponse mirrors the handlers' error payload shape so every failure
// on the wire carries the same "message" key. Declared here rather than
// imported because handlers depends on this package.
type ErrorResponse struct {
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{
		Message: message,
		TraceID: GetTraceID(c),
	}
}

// Authenticator resolves the request principal. Two strategies exist: the
// stateless bearer token and the stateful federated session. Each route
// declares which one it requires; both abort with the same generic 401.
type Authenticator struct {
	tokens     *security.TokenIssuer
	sessions   *usecase.SessionService
	cookieName string
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *security.TokenIssuer, sessions *usecase.SessionService, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, cookieName: cookieName}
}

// RequireBearer authenticates via the Authorization header.
func (a *Authenticator) RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthenticated(c)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthenticated(c)
			return
		}

		claims, err := a.tokens.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		attachPrincipal(c, claims.Principal())
		c.Next()
	}
}

// RequireSession authenticates via the federated session cookie.
func (a *Authenticator) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := c.Cookie(a.cookieName)
		if err != nil || ref == "" {
			abortUnauthenticated(c)
			return
		}

		account, err := a.sessions.Resolve(c.Request.Context(), ref)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		attachPrincipal(c, domain.PrincipalOf(account))
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, unauthenticatedMessage))
}

func attachPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(PrincipalKey, principal)
	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.AccountID = principal.ID
	}
}

// PrincipalFromContext retrieves the authenticated principal set by either strategy.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}
