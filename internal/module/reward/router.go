package reward

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (r *ModuleReward) InitRouter(router *gin.RouterGroup) {
	rewardGroup := router.Group("/rewards")

	rewardGroup.Use(middleware.Auth(model.RoleStudent))
	{
		rewardGroup.GET("", ListRewards)
		rewardGroup.GET("/:id", GetReward)
		rewardGroup.POST("/:id/exchange", Exchange)
	}

	adminGroup := router.Group("/rewards")
	adminGroup.Use(middleware.Auth(model.RoleAdmin))
	{
		adminGroup.POST("", CreateReward)
		adminGroup.PUT("/:id", UpdateReward)
		adminGroup.DELETE("/:id", DeleteReward)
	}
}
