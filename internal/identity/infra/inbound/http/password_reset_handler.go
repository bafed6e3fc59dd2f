package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/maidlink/internal/identity/application"
	"github.com/davicafu/maidlink/internal/identity/domain"
)

// PasswordResetHandler encapsula los endpoints de restablecimiento de contraseña.
type PasswordResetHandler struct {
	service *application.PasswordResetService
}

func NewPasswordResetHandler(service *application.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{service: service}
}

// RequestReset endpoint POST /password-resets
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	pr, err := h.service.RequestReset(c.Request.Context(), userID)
	if err != nil {
		writeResetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pr)
}

// ConfirmReset endpoint POST /password-resets/confirm
func (h *PasswordResetHandler) ConfirmReset(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pr, err := h.service.ConfirmReset(c.Request.Context(), req.Token)
	if err != nil {
		writeResetError(c, err)
		return
	}

	c.JSON(http.StatusOK, pr)
}

// CancelReset endpoint POST /password-resets/cancel
func (h *PasswordResetHandler) CancelReset(c *gin.Context) {
	var req struct {
		Token  string `json:"token" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.CancelReset(c.Request.Context(), req.Token, req.Reason); err != nil {
		writeResetError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func writeResetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrResetNotFound), errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is not valid"})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
