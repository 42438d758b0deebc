package upload

import (
	"path"
	"strings"

	"campus-club-system/config"
	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/global/storage"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20 // 5MB

// allowedExts 仅接受常见图片格式
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// allowedScenes 上传场景决定存储子目录
var allowedScenes = map[string]bool{
	"avatar": true,
	"cover":  true,
	"reward": true,
}

type PresignReq struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	Scene       string `json:"scene"`
}

// UploadImage 服务端直传：校验扩展名和大小后存本地磁盘或 S3
func UploadImage(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.UploadAsset); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	scene := c.DefaultQuery("scene", "cover")
	if !allowedScenes[scene] {
		response.Fail(c, response.ErrInvalidRequest.WithTips("上传场景无效"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("未找到上传文件").WithOrigin(err))
		return
	}
	if fileHeader.Size > maxImageSize {
		response.Fail(c, response.ErrInvalidRequest.WithTips("图片大小不能超过 5MB"))
		return
	}
	if !allowedExts[strings.ToLower(path.Ext(fileHeader.Filename))] {
		response.Fail(c, response.ErrInvalidRequest.WithTips("仅支持 jpg/jpeg/png/gif/webp 格式"))
		return
	}

	store := storage.NewFromConfig(scene, baseURLFor(scene))
	url, err := store.SaveImage(c.Request.Context(), fileHeader)
	if err != nil {
		log.Error("保存上传图片失败", "error", err, "scene", scene)
		response.Fail(c, response.ErrInternal.WithTips("图片上传失败").WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"url": url,
	})
}

// Presign 前端直传 S3 的预签名地址，未配置对象存储时返回冲突
func Presign(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.UploadAsset); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	var req PresignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if req.Scene == "" {
		req.Scene = "cover"
	}
	if !allowedScenes[req.Scene] {
		response.Fail(c, response.ErrInvalidRequest.WithTips("上传场景无效"))
		return
	}
	if !allowedExts[strings.ToLower(path.Ext(req.Filename))] {
		response.Fail(c, response.ErrInvalidRequest.WithTips("仅支持 jpg/jpeg/png/gif/webp 格式"))
		return
	}

	if config.Get().S3.Bucket == "" {
		response.Fail(c, response.ErrConflict.WithTips("未配置对象存储，请使用服务端上传"))
		return
	}

	store := storage.NewFromConfig(req.Scene, "")
	presigned, err := store.PresignUpload(c.Request.Context(), storage.PresignedUploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		log.Error("生成预签名上传地址失败", "error", err, "scene", req.Scene)
		response.Fail(c, response.ErrInternal.WithTips("生成上传地址失败").WithOrigin(err))
		return
	}

	response.Success(c, presigned)
}

// baseURLFor 本地磁盘模式下的静态访问路径
func baseURLFor(scene string) string {
	cfg := config.Get()
	return strings.TrimRight(cfg.Storage.BaseURL, "/") + "/" + scene
}
