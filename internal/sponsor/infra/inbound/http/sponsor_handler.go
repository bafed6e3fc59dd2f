package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/maidlink/internal/sponsor/application"
	"github.com/davicafu/maidlink/internal/sponsor/domain"
)

// SponsorHandler encapsula los endpoints HTTP del perfil de sponsor.
type SponsorHandler struct {
	service *application.SponsorService
}

func NewSponsorHandler(service *application.SponsorService) *SponsorHandler {
	return &SponsorHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateProfile endpoint POST /sponsor-profiles
func (h *SponsorHandler) CreateProfile(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := uuid.Parse(req.UserID)

	profile, err := h.service.CreateProfile(c.Request.Context(), userID)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetProfile endpoint GET /sponsor-profiles/:id
func (h *SponsorHandler) GetProfile(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfileByUser endpoint GET /sponsor-profiles?user_id=...
func (h *SponsorHandler) GetProfileByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	profile, err := h.service.GetProfileByUser(c.Request.Context(), userID)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateBasicInfo endpoint PUT /sponsor-profiles/:id/basic-info
func (h *SponsorHandler) UpdateBasicInfo(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		Nombre  string `json:"nombre"`
		Phone   string `json:"phone"`
		Country string `json:"country"`
		City    string `json:"city"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.UpdateBasicInfo(c.Request.Context(), id, req.Nombre, req.Phone, req.Country, req.City, req.Address)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateHouseholdInfo endpoint PUT /sponsor-profiles/:id/household
func (h *SponsorHandler) UpdateHouseholdInfo(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		HouseholdSize int `json:"household_size" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.UpdateHouseholdInfo(c.Request.Context(), id, req.HouseholdSize)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdatePreferences endpoint PUT /sponsor-profiles/:id/preferences
func (h *SponsorHandler) UpdatePreferences(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		Preferences map[string]interface{} `json:"preferences" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.UpdatePreferences(c.Request.Context(), id, req.Preferences)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UploadDocument endpoint POST /sponsor-profiles/:id/documents
func (h *SponsorHandler) UploadDocument(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		DocType string `json:"doc_type" binding:"required"`
		URL     string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.UploadDocument(c.Request.Context(), id, req.DocType, req.URL)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SubmitForVerification endpoint POST /sponsor-profiles/:id/submit
func (h *SponsorHandler) SubmitForVerification(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	profile, err := h.service.SubmitForVerification(c.Request.Context(), id)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Verify endpoint POST /sponsor-profiles/:id/verify
func (h *SponsorHandler) Verify(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		VerifiedBy string `json:"verified_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.Verify(c.Request.Context(), id, req.VerifiedBy)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Reject endpoint POST /sponsor-profiles/:id/reject
func (h *SponsorHandler) Reject(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		Reason     string `json:"reason" binding:"required"`
		RejectedBy string `json:"rejected_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.Reject(c.Request.Context(), id, req.Reason, req.RejectedBy)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Archive endpoint POST /sponsor-profiles/:id/archive
func (h *SponsorHandler) Archive(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	profile, err := h.service.Archive(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ---------------- Helpers ----------------

func parseProfileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return uuid.Nil, false
	}
	return id, true
}

func writeProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "sponsor profile not found"})
	case errors.Is(err, domain.ErrIncompleteProfile), errors.Is(err, domain.ErrInvalidProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
