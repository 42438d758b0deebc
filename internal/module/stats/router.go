package stats

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (s *ModuleStats) InitRouter(r *gin.RouterGroup) {
	adminGroup := r.Group("/stats")
	adminGroup.Use(middleware.Auth(model.RoleAdmin))
	{
		adminGroup.GET("/summary", Summary)
	}
}
