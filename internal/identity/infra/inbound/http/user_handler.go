package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/maidlink/internal/identity/application"
	"github.com/davicafu/maidlink/internal/identity/domain"
)

// UserHandler encapsula los endpoints HTTP relacionados con User
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler crea un nuevo UserHandler
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ---------------- Handlers ----------------

// RegisterUser endpoint POST /users
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req struct {
		Email  string `json:"email" binding:"required,email"`
		Nombre string `json:"nombre" binding:"required"`
		Role   string `json:"role" binding:"required,oneof=maid sponsor agency"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.RegisterUser(c.Request.Context(), req.Email, req.Nombre, domain.UserRole(req.Role))
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser endpoint GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// VerifyEmail endpoint POST /users/:id/verify-email
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.VerifyEmail(c.Request.Context(), id)
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// VerifyPhone endpoint POST /users/:id/verify-phone
func (h *UserHandler) VerifyPhone(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.VerifyPhone(c.Request.Context(), id, req.Phone)
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// SuspendUser endpoint POST /users/:id/suspend
func (h *UserHandler) SuspendUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	user, err := h.service.SuspendUser(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ReactivateUser endpoint POST /users/:id/reactivate
func (h *UserHandler) ReactivateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.ReactivateUser(c.Request.Context(), id)
	if err != nil {
		writeUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ---------------- Helpers ----------------

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, domain.ErrInvalidUser),
		errors.Is(err, domain.ErrEmailAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
