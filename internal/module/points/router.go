package points

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (p *ModulePoints) InitRouter(r *gin.RouterGroup) {
	pointsGroup := r.Group("/points")

	pointsGroup.Use(middleware.Auth(model.RoleStudent))
	{
		pointsGroup.GET("/history", History)
	}

	adminGroup := r.Group("/points")
	adminGroup.Use(middleware.Auth(model.RoleAdmin))
	{
		adminGroup.GET("/history/:user_id", HistoryOf)
	}
}
