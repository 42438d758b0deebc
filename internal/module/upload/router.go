package upload

import (
	"campus-club-system/internal/global/middleware"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

func (u *ModuleUpload) InitRouter(r *gin.RouterGroup) {
	uploadGroup := r.Group("/upload")
	uploadGroup.Use(middleware.Auth(model.RoleStudent))
	{
		uploadGroup.POST("/image", UploadImage)
		uploadGroup.POST("/presign", Presign)
	}
}
