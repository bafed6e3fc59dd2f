package http

import "github.com/gin-gonic/gin"

func RegisterRecruitmentRoutes(r *gin.Engine, handler *ApplicationHandler) {
	apps := r.Group("/applications")
	{
		apps.POST("/", handler.Apply)
		apps.GET("/", handler.ListByMaid)
		apps.GET("/:id", handler.GetApplication)
		apps.PUT("/:id/cover-letter", handler.UpdateCoverLetter)
		apps.POST("/:id/review", handler.MarkAsReviewed)
		apps.POST("/:id/interview", handler.ScheduleInterview)
		apps.POST("/:id/interview/complete", handler.CompleteInterview)
		apps.POST("/:id/accept", handler.Accept)
		apps.POST("/:id/reject", handler.Reject)
		apps.POST("/:id/withdraw", handler.Withdraw)
	}
}
