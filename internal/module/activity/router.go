package activity

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (p *ModuleActivity) InitRouter(r *gin.RouterGroup) {
	activityGroup := r.Group("/activity")

	activityGroup.Use(middleware.Auth(model.RoleStudent))
	{
		activityGroup.GET("/list", ListActivities)
		activityGroup.GET("/get/:id", GetActivity)

		// 学生参与动作
		activityGroup.POST("/:id/signup", Signup)
		activityGroup.DELETE("/:id/signup", CancelSignup)
		activityGroup.POST("/:id/checkin", CheckIn)
	}

	adminGroup := r.Group("/activity")
	adminGroup.Use(middleware.Auth(model.RoleAdmin))
	{
		adminGroup.POST("/create", CreateActivity)
		adminGroup.PUT("/update/:id", UpdateActivity)
		adminGroup.DELETE("/delete/:id", DeleteActivity)

		// 生命周期流转
		adminGroup.PUT("/:id/start", StartActivity)
		adminGroup.PUT("/:id/complete", CompleteActivity)
		adminGroup.PUT("/:id/cancel", CancelActivity)

		adminGroup.POST("/:id/checkin-code", SetCheckInCode)
		adminGroup.GET("/:id/participants", Participants)
		adminGroup.GET("/:id/participants/export", ExportParticipants)
		adminGroup.GET("/stats/summary", Stats)
	}
}
