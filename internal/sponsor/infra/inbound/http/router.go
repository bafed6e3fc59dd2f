package http

import "github.com/gin-gonic/gin"

func RegisterSponsorRoutes(r *gin.Engine, handler *SponsorHandler) {
	profiles := r.Group("/sponsor-profiles")
	{
		profiles.POST("/", handler.CreateProfile)
		profiles.GET("/", handler.GetProfileByUser)
		profiles.GET("/:id", handler.GetProfile)
		profiles.PUT("/:id/basic-info", handler.UpdateBasicInfo)
		profiles.PUT("/:id/household", handler.UpdateHouseholdInfo)
		profiles.PUT("/:id/preferences", handler.UpdatePreferences)
		profiles.POST("/:id/documents", handler.UploadDocument)
		profiles.POST("/:id/submit", handler.SubmitForVerification)
		profiles.POST("/:id/verify", handler.Verify)
		profiles.POST("/:id/reject", handler.Reject)
		profiles.POST("/:id/archive", handler.Archive)
	}
}
