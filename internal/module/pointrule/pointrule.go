package pointrule

import (
	"strconv"

	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type RuleCreateReq struct {
	RuleName     string `json:"rule_name" binding:"required,max=100"`
	ActivityType string `json:"activity_type" binding:"required"`
	BasePoints   *uint  `json:"base_points" binding:"required"`
	BonusPoints  uint   `json:"bonus_points"`
	Description  string `json:"description" binding:"max=255"`
}

type RuleUpdateReq struct {
	RuleName     *string `json:"rule_name" binding:"omitempty,max=100"`
	ActivityType *string `json:"activity_type"`
	BasePoints   *uint   `json:"base_points"`
	BonusPoints  *uint   `json:"bonus_points"`
	Description  *string `json:"description" binding:"omitempty,max=255"`
	Status       *string `json:"status"`
}

func getRuleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("规则ID无效"))
		return 0, false
	}
	return uint(id), true
}

// CreateRule 新建积分规则，规则名全局唯一
func CreateRule(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.PointRuleManage)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	var req RuleCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if !model.ValidActivityType(req.ActivityType) {
		response.Fail(c, response.ErrInvalidRequest.WithTips("活动类型无效"))
		return
	}

	var count int64
	if err := database.DB.Model(&model.PointRule{}).
		Where("rule_name = ?", req.RuleName).Count(&count).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if count > 0 {
		response.Fail(c, response.ErrAlreadyExists.WithTips("规则名称已存在"))
		return
	}

	rule := model.PointRule{
		RuleName:     req.RuleName,
		ActivityType: req.ActivityType,
		BasePoints:   *req.BasePoints,
		BonusPoints:  req.BonusPoints,
		Description:  req.Description,
		Status:       model.PointRuleStatusActive,
		CreatedByID:  payload.UserID,
	}
	if err := database.DB.Create(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Fail(c, response.ErrAlreadyExists.WithTips("规则名称已存在"))
			return
		}
		log.Error("创建积分规则失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("积分规则已创建", "rule_id", rule.ID, "rule_name", rule.RuleName)
	response.Success(c, rule)
}

// ListRules 管理端分页查询，支持名称/描述模糊搜索和状态过滤
func ListRules(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.PointRuleManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := database.DB.Model(&model.PointRule{})
	if keyword := c.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("rule_name LIKE ? OR description LIKE ?", like, like)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if activityType := c.Query("type"); activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var rules []model.PointRule
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rules).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"rules":       rules,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// ListActiveRules 活动创建表单用的启用规则列表
func ListActiveRules(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.PointRuleRead); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	query := database.DB.Model(&model.PointRule{}).
		Where("status = ?", model.PointRuleStatusActive)
	if activityType := c.Query("type"); activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}

	var rules []model.PointRule
	if err := query.Order("rule_name ASC").Find(&rules).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"rules": rules,
	})
}

func GetRule(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.PointRuleManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRuleID(c)
	if !ok {
		return
	}

	var rule model.PointRule
	if err := database.DB.First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("积分规则不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, rule)
}

// UpdateRule 部分更新，改名时重新校验唯一性
func UpdateRule(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.PointRuleManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRuleID(c)
	if !ok {
		return
	}

	var req RuleUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if req.ActivityType != nil && !model.ValidActivityType(*req.ActivityType) {
		response.Fail(c, response.ErrInvalidRequest.WithTips("活动类型无效"))
		return
	}
	if req.Status != nil &&
		*req.Status != model.PointRuleStatusActive && *req.Status != model.PointRuleStatusInactive {
		response.Fail(c, response.ErrInvalidRequest.WithTips("规则状态无效"))
		return
	}

	var rule model.PointRule
	if err := database.DB.First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("积分规则不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if req.RuleName != nil && *req.RuleName != rule.RuleName {
		var count int64
		if err := database.DB.Model(&model.PointRule{}).
			Where("rule_name = ? AND id <> ?", *req.RuleName, id).Count(&count).Error; err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		if count > 0 {
			response.Fail(c, response.ErrAlreadyExists.WithTips("规则名称已存在"))
			return
		}
		rule.RuleName = *req.RuleName
	}
	if req.ActivityType != nil {
		rule.ActivityType = *req.ActivityType
	}
	if req.BasePoints != nil {
		rule.BasePoints = *req.BasePoints
	}
	if req.BonusPoints != nil {
		rule.BonusPoints = *req.BonusPoints
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.Status != nil {
		rule.Status = *req.Status
	}

	if err := database.DB.Save(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.Fail(c, response.ErrAlreadyExists.WithTips("规则名称已存在"))
			return
		}
		log.Error("更新积分规则失败", "error", err, "rule_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, rule)
}

// DeleteRule 规则被活动引用时不允许删除
func DeleteRule(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.PointRuleManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRuleID(c)
	if !ok {
		return
	}

	var refCount int64
	if err := database.DB.Model(&model.Activity{}).
		Where("point_rule_id = ?", id).Count(&refCount).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if refCount > 0 {
		response.Fail(c, response.ErrConflict.WithTips("该规则已被活动引用，不能删除"))
		return
	}

	result := database.DB.Delete(&model.PointRule{}, "id = ?", id)
	if result.Error != nil {
		log.Error("删除积分规则失败", "error", result.Error, "rule_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("积分规则不存在"))
		return
	}

	log.Info("积分规则已删除", "rule_id", id)
	response.Success(c, nil)
}
