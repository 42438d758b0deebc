package pointrule

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (p *ModulePointRule) InitRouter(r *gin.RouterGroup) {
	ruleGroup := r.Group("/point-rules")

	ruleGroup.Use(middleware.Auth(model.RoleStudent))
	{
		ruleGroup.GET("/active", ListActiveRules)
	}

	adminGroup := r.Group("/point-rules")
	adminGroup.Use(middleware.Auth(model.RoleAdmin))
	{
		adminGroup.POST("", CreateRule)
		adminGroup.GET("", ListRules)
		adminGroup.GET("/:id", GetRule)
		adminGroup.PUT("/:id", UpdateRule)
		adminGroup.DELETE("/:id", DeleteRule)
	}
}
