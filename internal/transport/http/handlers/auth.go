package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
	"github.com/Domis382/Redibo-back-wtt/internal/infra/security"
	"github.com/Domis382/Redibo-back-wtt/internal/repository"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/middleware"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

// AuthHandler exposes registration, login and profile lookup endpoints.
type AuthHandler struct {
	auth          *usecase.AuthService
	authenticator *middleware.Authenticator
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, authenticator *middleware.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth, authenticator: authenticator}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.POST("/check-phone", h.checkPhone)
	r.GET("/me", h.authenticator.RequireBearer(), h.me)
	r.GET("/profile/:id_usuario", h.authenticator.RequireBearer(), h.profile)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Cuerpo de la solicitud inválido"))
		return
	}

	input := usecase.RegisterInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Phone:       req.Phone,
	}
	if req.BirthDate != "" {
		date, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "La fecha debe tener el formato AAAA-MM-DD."))
			return
		}
		input.BirthDate = &date
	}

	account, token, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		if respondFieldError(c, err) {
			return
		}
		var policy *security.PasswordValidationError
		if errors.As(err, &policy) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, policy.Error()))
			return
		}
		if errors.Is(err, usecase.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "El correo electrónico ya está registrado."))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error en el servidor"))
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "Usuario registrado exitosamente",
		Token:   token,
		User:    newUserSummary(account),
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Cuerpo de la solicitud inválido"))
		return
	}

	account, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			// One message for every credential failure so responses cannot
			// be used to probe which emails exist.
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Los datos no son válidos"},
			{Err: usecase.ErrTooManyAttempts, Status: http.StatusTooManyRequests, Message: "Demasiados intentos. Inténtalo más tarde."},
		}, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login exitoso",
		Token:   token,
		User:    newUserSummary(account),
	})
}

func (h *AuthHandler) me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	account, err := h.auth.GetProfile(c.Request.Context(), principal.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "Usuario no encontrado"},
		}, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(account))
}

func (h *AuthHandler) profile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id_usuario"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "ID de usuario inválido"))
		return
	}

	account, err := h.auth.GetProfile(c.Request.Context(), id)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "Usuario no encontrado"},
		}, http.StatusInternalServerError, "Error en el servidor")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(account))
}

func (h *AuthHandler) checkPhone(c *gin.Context) {
	var req CheckPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Telefono == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Teléfono no proporcionado"))
		return
	}

	exists, err := h.auth.CheckPhone(c.Request.Context(), req.Telefono)
	if err != nil {
		if respondFieldError(c, err) {
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error en el servidor"))
		return
	}

	c.JSON(http.StatusOK, CheckPhoneResponse{Exists: exists})
}

// respondFieldError maps the typed domain validation errors onto 400
// responses carrying their own message. Returns false when err is neither.
func respondFieldError(c *gin.Context, err error) bool {
	var format *domain.FormatError
	if errors.As(err, &format) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, format.Message))
		return true
	}
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, validation.Message))
		return true
	}
	if errors.Is(err, domain.ErrUnknownField) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Campo no permitido."))
		return true
	}
	return false
}
