package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Domis382/Redibo-back-wtt/internal/infra/config"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/middleware"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthHandler drives the Google authorization-code flow and the federated
// session it establishes.
type OAuthHandler struct {
	federation    *usecase.FederationService
	sessions      *usecase.SessionService
	authenticator *middleware.Authenticator
	oauth         *oauth2.Config
	sessionCfg    config.SessionSettings
	frontendURL   string
	logger        *zap.Logger
}

// NewOAuthHandler constructs OAuthHandler.
func NewOAuthHandler(
	federation *usecase.FederationService,
	sessions *usecase.SessionService,
	authenticator *middleware.Authenticator,
	oauth *oauth2.Config,
	sessionCfg config.SessionSettings,
	frontendURL string,
	log *zap.Logger,
) *OAuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OAuthHandler{
		federation:    federation,
		sessions:      sessions,
		authenticator: authenticator,
		oauth:         oauth,
		sessionCfg:    sessionCfg,
		frontendURL:   frontendURL,
		logger:        log,
	}
}

// RegisterRoutes binds the federated sign-in routes. The callback establishes
// the session strategy; the remaining routes consume it.
func (h *OAuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/google", h.begin)
	r.GET("/google/callback", h.callback)
	r.GET("/google/me", h.authenticator.RequireSession(), h.sessionProfile)
	r.POST("/logout", h.authenticator.RequireSession(), h.logout)
}

func (h *OAuthHandler) begin(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", h.sessionCfg.CookieSecure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

type googleUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *OAuthHandler) callback(c *gin.Context) {
	state, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", h.sessionCfg.CookieSecure, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("google code exchange failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	info, err := h.fetchUserInfo(c, token)
	if err != nil {
		h.logger.Warn("google userinfo fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, NewErrorResponse(c, "No se pudo obtener el perfil de Google"))
		return
	}

	account, err := h.federation.Resolve(c.Request.Context(), usecase.FederatedProfile{
		Email:       info.Email,
		DisplayName: info.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyRegistered):
			// Requires user action, so the message is specific rather than
			// the generic credential failure.
			c.JSON(http.StatusConflict, NewErrorResponse(c, "El correo electrónico ya está registrado."))
		case errors.Is(err, usecase.ErrMissingFederatedEmail):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "No se pudo obtener el email de Google"))
		case errors.Is(err, usecase.ErrProfileLinkFailure):
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "No se pudo obtener el ID del usuario"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error en el servidor"))
		}
		return
	}

	ref, err := h.sessions.Establish(c.Request.Context(), account)
	if err != nil {
		h.logger.Error("establish session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error en el servidor"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCfg.CookieName, ref, int(h.sessionCfg.TTL.Seconds()), "/", "", h.sessionCfg.CookieSecure, true)
	c.Redirect(http.StatusFound, h.frontendURL)
}

func (h *OAuthHandler) fetchUserInfo(c *gin.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("request userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

func (h *OAuthHandler) sessionProfile(c *gin.Context) {
	account, err := h.sessions.Resolve(c.Request.Context(), h.sessionRef(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(account))
}

func (h *OAuthHandler) logout(c *gin.Context) {
	ref := h.sessionRef(c)
	if err := h.sessions.Destroy(c.Request.Context(), ref); err != nil {
		h.logger.Warn("destroy session failed", zap.Error(err))
	}

	c.SetCookie(h.sessionCfg.CookieName, "", -1, "/", "", h.sessionCfg.CookieSecure, true)
	c.JSON(http.StatusOK, MessageResponse{Message: "Sesión cerrada correctamente."})
}

func (h *OAuthHandler) sessionRef(c *gin.Context) string {
	ref, err := c.Cookie(h.sessionCfg.CookieName)
	if err != nil {
		return ""
	}
	return ref
}
