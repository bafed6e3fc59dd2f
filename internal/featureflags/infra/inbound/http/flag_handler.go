package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/maidlink/internal/featureflags/application"
	"github.com/davicafu/maidlink/internal/featureflags/domain"
)

// FlagHandler expone la evaluación de flags y la invalidación de su caché.
type FlagHandler struct {
	service *application.FlagService
}

func NewFlagHandler(service *application.FlagService) *FlagHandler {
	return &FlagHandler{service: service}
}

// Evaluate endpoint GET /flags/:name?user_id=...&session_id=...&role=...
func (h *FlagHandler) Evaluate(c *gin.Context) {
	name := c.Param("name")
	ectx := domain.EvalContext{
		UserID:    c.Query("user_id"),
		SessionID: c.Query("session_id"),
		Role:      c.Query("role"),
	}

	enabled := h.service.IsEnabled(c.Request.Context(), name, ectx)
	c.JSON(http.StatusOK, gin.H{"flag": name, "enabled": enabled})
}

// ClearCache endpoint POST /flags/cache/clear
func (h *FlagHandler) ClearCache(c *gin.Context) {
	h.service.ClearCache()
	c.Status(http.StatusNoContent)
}

func RegisterFlagRoutes(r *gin.Engine, handler *FlagHandler) {
	flags := r.Group("/flags")
	{
		flags.POST("/cache/clear", handler.ClearCache)
		flags.GET("/:name", handler.Evaluate)
	}
}
