package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Message: message,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary is the wire view of an account. Field names follow the
// established client contract.
type UserSummary struct {
	ID          int64   `json:"id_usuario"`
	DisplayName string  `json:"nombre_completo"`
	Email       string  `json:"email"`
	Phone       *int64  `json:"telefono,omitempty"`
	BirthDate   *string `json:"fecha_nacimiento,omitempty"`
	PhotoPath   *string `json:"foto_perfil,omitempty"`
	Provenance  string  `json:"registrado_con"`
}

func newUserSummary(account *domain.Account) UserSummary {
	summary := UserSummary{
		ID:          account.ID,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		Phone:       account.Phone,
		PhotoPath:   account.PhotoPath,
		Provenance:  string(account.Provenance),
	}
	if account.BirthDate != nil {
		date := account.BirthDate.Format("2006-01-02")
		summary.BirthDate = &date
	}
	return summary
}

// RegisterRequest defines the payload for local registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"nombre_completo"`
	Password    string `json:"contraseña"`
	Phone       *int64 `json:"telefono"`
	BirthDate   string `json:"fecha_nacimiento"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"contraseña" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

// FieldUpdateRequest defines the guarded field edit payload.
type FieldUpdateRequest struct {
	Campo string `json:"campo"`
	Valor string `json:"valor"`
}

// FieldUpdateResponse reports a committed or idempotent field edit.
type FieldUpdateResponse struct {
	Message            string      `json:"message"`
	EdicionesRestantes int         `json:"edicionesRestantes"`
	InfoExtra          *string     `json:"infoExtra,omitempty"`
	User               UserSummary `json:"user"`
}

// CheckPhoneRequest asks whether a phone number is already registered.
type CheckPhoneRequest struct {
	Telefono string `json:"telefono"`
}

// CheckPhoneResponse reports phone availability.
type CheckPhoneResponse struct {
	Exists bool `json:"exists"`
}

// PhotoResponse returns the stored photo path after an upload.
type PhotoResponse struct {
	Message    string  `json:"message"`
	FotoPerfil *string `json:"foto_perfil,omitempty"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
