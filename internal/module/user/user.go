package user

import (
	"strings"

	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/jwt"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// LoginReq 定义登录请求的结构体
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterReq 定义注册请求的结构体，学生角色必须携带学号/学院/班级
type RegisterReq struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	RoleID    int    `json:"role_id" binding:"gte=0,lte=1"`
	StudentID string `json:"student_id"`
	College   string `json:"college"`
	Class     string `json:"class"`
}

// Login 处理用户登录请求
func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var user model.User
	err := database.DB.Where("username = ?", req.Username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn("用户不存在", "username", req.Username)
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	case err != nil:
		log.Error("数据库查询失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if !tools.PasswordCompare(req.Password, user.Password) {
		log.Warn("密码错误", "username", req.Username)
		response.Fail(c, response.ErrInvalidRequest.WithTips("用户名或密码错误"))
		return
	}

	if user.Status != model.UserStatusActive {
		log.Warn("账号已停用", "username", req.Username)
		response.Fail(c, response.ErrForbidden.WithTips("账号已停用"))
		return
	}

	log.Info("用户登录成功",
		"user_id", user.ID,
		"role_id", user.RoleID)

	response.Success(c, gin.H{
		"token": jwt.CreateToken(jwt.Payload{
			UserID: user.ID,
			RoleID: user.RoleID,
		}),
		"user": user,
	})
}

// Register 处理用户注册请求
func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定注册请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if err := validatePasswordStrength(req.Password); err != nil {
		log.Warn("密码强度验证失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
		return
	}

	// 学生必须携带学籍信息
	if req.RoleID == model.RoleStudent {
		if req.StudentID == "" || req.College == "" || req.Class == "" {
			response.Fail(c, response.ErrInvalidRequest.WithTips("学生注册需要学号、学院和班级"))
			return
		}
	} else {
		// 管理员不保留学籍字段
		req.StudentID = ""
		req.College = ""
		req.Class = ""
	}

	// 用户名、邮箱、学号唯一性检查
	var count int64
	if err := database.DB.Model(&model.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if count > 0 {
		log.Warn("用户已存在", "username", req.Username, "email", req.Email)
		response.Fail(c, response.ErrAlreadyExists.WithTips("用户名或邮箱已被注册"))
		return
	}
	if req.StudentID != "" {
		if err := database.DB.Model(&model.User{}).
			Where("student_id = ?", req.StudentID).
			Count(&count).Error; err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		if count > 0 {
			log.Warn("学号已被注册", "student_id", req.StudentID)
			response.Fail(c, response.ErrAlreadyExists.WithTips("学号已被注册"))
			return
		}
	}

	user := model.User{
		Username:  req.Username,
		Password:  tools.PasswordEncrypt(req.Password),
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		RoleID:    req.RoleID,
		StudentID: req.StudentID,
		College:   req.College,
		Class:     req.Class,
		Status:    model.UserStatusActive,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		log.Error("创建用户失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("用户注册成功",
		"user_id", user.ID,
		"username", user.Username,
		"role_id", user.RoleID)

	response.Success(c, gin.H{
		"user_id": user.ID,
	})
}

// Profile 获取当前用户信息
func Profile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var user model.User
	if err := database.DB.First(&user, "id = ?", payload.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, user)
}

// UpdateProfileReq 定义更新资料请求的结构体，使用指针类型支持部分更新
type UpdateProfileReq struct {
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	College *string `json:"college"`
	Class   *string `json:"class"`
	Avatar  *string `json:"avatar"`
}

// UpdateProfile 更新当前用户的基础资料
func UpdateProfile(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新资料请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var user model.User
	if err := database.DB.First(&user, "id = ?", payload.UserID).Error; err != nil {
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	}

	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.College != nil {
		user.College = *req.College
	}
	if req.Class != nil {
		user.Class = *req.Class
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := database.DB.Save(&user).Error; err != nil {
		log.Error("更新用户资料失败", "error", err, "user_id", user.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, user)
}

// ChangePasswordReq 定义修改密码请求的结构体
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 验证旧密码正确后更新新密码
func ChangePassword(c *gin.Context) {
	payload, exists := jwt.GetUserPayload(c)
	if !exists {
		response.Fail(c, response.ErrUnauthorized)
		return
	}

	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定修改密码请求失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if err := validatePasswordStrength(req.NewPassword); err != nil {
		log.Warn("新密码强度验证失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrInvalidRequest.WithTips(err.Error()))
		return
	}

	var user model.User
	if err := database.DB.First(&user, "id = ?", payload.UserID).Error; err != nil {
		response.Fail(c, response.ErrNotFound.WithTips("用户不存在"))
		return
	}

	if !tools.PasswordCompare(req.OldPassword, user.Password) {
		log.Warn("旧密码错误", "user_id", payload.UserID)
		response.Fail(c, response.ErrInvalidRequest.WithTips("旧密码错误"))
		return
	}

	user.Password = tools.PasswordEncrypt(req.NewPassword)
	if err := database.DB.Save(&user).Error; err != nil {
		log.Error("修改密码失败", "error", err, "user_id", user.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c)
}

// validatePasswordStrength 验证密码强度
func validatePasswordStrength(password string) error {
	if password == "" {
		return errors.New("密码不能为空")
	}
	if len(password) < 8 {
		return errors.New("密码长度必须至少8字符")
	}

	hasLetter := false
	hasDigit := false
	hasSpecial := false
	specialChars := "!@#$%^&*-"

	for _, char := range password {
		switch {
		case strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ", char):
			hasLetter = true
		case strings.ContainsRune("0123456789", char):
			hasDigit = true
		case strings.ContainsRune(specialChars, char):
			hasSpecial = true
		}
	}

	if !hasLetter {
		return errors.New("密码必须包含至少一个字母")
	}
	if !hasDigit {
		return errors.New("密码必须包含至少一个数字")
	}
	if !hasSpecial {
		return errors.New("密码必须包含至少一个特殊字符（!@#$%^&*-）")
	}

	return nil
}
