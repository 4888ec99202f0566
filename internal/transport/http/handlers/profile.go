package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domis382/Redibo-back-wtt/internal/repository"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/middleware"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

// ProfileHandler exposes the guarded field edit endpoint.
type ProfileHandler struct {
	profile       *usecase.ProfileService
	authenticator *middleware.Authenticator
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profile *usecase.ProfileService, authenticator *middleware.Authenticator) *ProfileHandler {
	return &ProfileHandler{profile: profile, authenticator: authenticator}
}

// RegisterRoutes binds profile mutation routes. Mutations always require the
// bearer strategy.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.PATCH("/me/field", h.authenticator.RequireBearer(), h.updateField)
}

func (h *ProfileHandler) updateField(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	var req FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Campo y valor son obligatorios."))
		return
	}

	result, err := h.profile.UpdateField(c.Request.Context(), principal.ID, req.Campo, req.Valor)
	if err != nil {
		if respondFieldError(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEditLimitReached, Status: http.StatusBadRequest, Message: "Has alcanzado el límite de 3 ediciones para este campo."},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "Usuario no encontrado"},
		}, http.StatusInternalServerError, "Error al actualizar el campo.")
		return
	}

	resp := FieldUpdateResponse{
		Message:            result.Message,
		EdicionesRestantes: result.Remaining,
		User:               newUserSummary(result.Account),
	}
	if result.Advisory != "" {
		advisory := result.Advisory
		resp.InfoExtra = &advisory
	}

	c.JSON(http.StatusOK, resp)
}
