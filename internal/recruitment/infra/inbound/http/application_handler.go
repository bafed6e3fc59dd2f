package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/maidlink/internal/recruitment/application"
	"github.com/davicafu/maidlink/internal/recruitment/domain"
)

// ApplicationHandler encapsula los endpoints HTTP de candidaturas.
type ApplicationHandler struct {
	service *application.ApplicationService
}

func NewApplicationHandler(service *application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// ---------------- Handlers ----------------

// Apply endpoint POST /applications
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req struct {
		JobID       string `json:"job_id" binding:"required,uuid"`
		MaidID      string `json:"maid_id" binding:"required,uuid"`
		SponsorID   string `json:"sponsor_id" binding:"required,uuid"`
		CoverLetter string `json:"cover_letter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, _ := uuid.Parse(req.JobID)
	maidID, _ := uuid.Parse(req.MaidID)
	sponsorID, _ := uuid.Parse(req.SponsorID)

	app, err := h.service.Apply(c.Request.Context(), jobID, maidID, sponsorID, req.CoverLetter)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// GetApplication endpoint GET /applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	app, err := h.service.GetApplication(c.Request.Context(), id)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ListByMaid endpoint GET /applications?maid_id=...&limit=...&offset=...
func (h *ApplicationHandler) ListByMaid(c *gin.Context) {
	maidID, err := uuid.Parse(c.Query("maid_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maid_id"})
		return
	}

	limit, offset := 0, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		offset = v
	}

	apps, err := h.service.ListByMaid(c.Request.Context(), maidID, limit, offset)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// UpdateCoverLetter endpoint PUT /applications/:id/cover-letter
func (h *ApplicationHandler) UpdateCoverLetter(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		CoverLetter string `json:"cover_letter" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.service.UpdateCoverLetter(c.Request.Context(), id, req.CoverLetter)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// MarkAsReviewed endpoint POST /applications/:id/review
func (h *ApplicationHandler) MarkAsReviewed(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		SponsorID string `json:"sponsor_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sponsorID, _ := uuid.Parse(req.SponsorID)

	app, err := h.service.MarkAsReviewed(c.Request.Context(), id, sponsorID)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ScheduleInterview endpoint POST /applications/:id/interview
func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		SponsorID string    `json:"sponsor_id" binding:"required,uuid"`
		Date      time.Time `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sponsorID, _ := uuid.Parse(req.SponsorID)

	app, err := h.service.ScheduleInterview(c.Request.Context(), id, req.Date, sponsorID)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// CompleteInterview endpoint POST /applications/:id/interview/complete
func (h *ApplicationHandler) CompleteInterview(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	app, err := h.service.CompleteInterview(c.Request.Context(), id, req.Notes)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Accept endpoint POST /applications/:id/accept
func (h *ApplicationHandler) Accept(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		SponsorID string `json:"sponsor_id" binding:"required,uuid"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sponsorID, _ := uuid.Parse(req.SponsorID)

	app, err := h.service.Accept(c.Request.Context(), id, sponsorID, req.Notes)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Reject endpoint POST /applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		SponsorID string `json:"sponsor_id" binding:"required,uuid"`
		Reason    string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sponsorID, _ := uuid.Parse(req.SponsorID)

	app, err := h.service.Reject(c.Request.Context(), id, sponsorID, req.Reason)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// Withdraw endpoint POST /applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := parseAppID(c)
	if !ok {
		return
	}

	var req struct {
		MaidID string `json:"maid_id" binding:"required,uuid"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	maidID, _ := uuid.Parse(req.MaidID)

	app, err := h.service.Withdraw(c.Request.Context(), id, maidID, req.Reason)
	if err != nil {
		writeApplicationError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// ---------------- Helpers ----------------

func parseAppID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidApplication):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
