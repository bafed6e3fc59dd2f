package http

import "github.com/gin-gonic/gin"

func RegisterIdentityRoutes(r *gin.Engine, users *UserHandler, resets *PasswordResetHandler) {
	u := r.Group("/users")
	{
		u.POST("/", users.RegisterUser)
		u.GET("/:id", users.GetUser)
		u.POST("/:id/verify-email", users.VerifyEmail)
		u.POST("/:id/verify-phone", users.VerifyPhone)
		u.POST("/:id/suspend", users.SuspendUser)
		u.POST("/:id/reactivate", users.ReactivateUser)
	}

	pr := r.Group("/password-resets")
	{
		pr.POST("/", resets.RequestReset)
		pr.POST("/confirm", resets.ConfirmReset)
		pr.POST("/cancel", resets.CancelReset)
	}
}
