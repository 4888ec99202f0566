package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domis382/Redibo-back-wtt/internal/repository"
	"github.com/Domis382/Redibo-back-wtt/internal/transport/http/middleware"
	"github.com/Domis382/Redibo-back-wtt/internal/usecase"
)

const photoFormField = "foto"

// PhotoHandler exposes the profile-photo lifecycle endpoints.
type PhotoHandler struct {
	photos        *usecase.PhotoService
	auth          *usecase.AuthService
	authenticator *middleware.Authenticator
}

// NewPhotoHandler constructs PhotoHandler.
func NewPhotoHandler(photos *usecase.PhotoService, auth *usecase.AuthService, authenticator *middleware.Authenticator) *PhotoHandler {
	return &PhotoHandler{photos: photos, auth: auth, authenticator: authenticator}
}

// RegisterRoutes binds photo routes. Both require the bearer strategy.
func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/me/photo", h.authenticator.RequireBearer(), h.upload)
	r.DELETE("/me/photo", h.authenticator.RequireBearer(), h.remove)
}

func (h *PhotoHandler) upload(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	account, err := h.auth.GetProfile(c.Request.Context(), principal.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "Usuario no encontrado"},
		}, http.StatusInternalServerError, "Error al actualizar la foto de perfil.")
		return
	}

	file, err := c.FormFile(photoFormField)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "No se subió ninguna imagen."))
		return
	}

	payload, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error al actualizar la foto de perfil."))
		return
	}
	defer payload.Close()

	path, err := h.photos.Upload(c.Request.Context(), account, file.Header.Get("Content-Type"), file.Size, payload)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnsupportedPhotoFormat):
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "Solo se permiten imágenes PNG."))
		case errors.Is(err, usecase.ErrPhotoTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse(c, "La imagen no debe superar los 2MB."))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Error al actualizar la foto de perfil."))
		}
		return
	}

	c.JSON(http.StatusOK, PhotoResponse{
		Message:    "Foto de perfil actualizada exitosamente.",
		FotoPerfil: &path,
	})
}

func (h *PhotoHandler) remove(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "Usuario no autenticado"))
		return
	}

	account, err := h.auth.GetProfile(c.Request.Context(), principal.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "Usuario no encontrado"},
		}, http.StatusInternalServerError, "Error al eliminar la foto.")
		return
	}

	if err := h.photos.Delete(c.Request.Context(), account); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNoPhotoToDelete, Status: http.StatusBadRequest, Message: "No hay foto para eliminar."},
		}, http.StatusInternalServerError, "Error al eliminar la foto.")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Foto de perfil eliminada exitosamente."})
}
