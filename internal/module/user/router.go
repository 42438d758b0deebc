package user

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user")
	{
		userGroup.POST("/register", Register)
		userGroup.POST("/login", Login)
	}

	authGroup := r.Group("/user")
	authGroup.Use(middleware.Auth(model.RoleStudent))
	{
		authGroup.GET("/profile", Profile)
		authGroup.PUT("/profile", UpdateProfile)
		authGroup.PUT("/password", ChangePassword)
	}
}
