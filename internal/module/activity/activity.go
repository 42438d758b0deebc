package activity

import (
	"strconv"

	"campus-club-system/config"
	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ActivityCreateReq 定义创建活动请求的结构体
type ActivityCreateReq struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	Type            string   `json:"type" binding:"required"`
	PointRuleID     uint     `json:"point_rule_id" binding:"required"`
	StartDate       int64    `json:"start_date" binding:"required"`
	EndDate         int64    `json:"end_date" binding:"required"`
	Location        string   `json:"location" binding:"required"`
	MaxParticipants *uint    `json:"max_participants" binding:"required"` // 0 表示不限人数
	CoverImage      string   `json:"cover_image"`
	Images          []string `json:"images"`
	Tags            []string `json:"tags"`
}

// ActivityUpdateReq 定义更新活动请求的结构体，使用指针类型支持部分更新
type ActivityUpdateReq struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	Type            *string   `json:"type"`
	PointRuleID     *uint     `json:"point_rule_id"`
	StartDate       *int64    `json:"start_date"`
	EndDate         *int64    `json:"end_date"`
	Location        *string   `json:"location"`
	MaxParticipants *uint     `json:"max_participants"`
	CoverImage      *string   `json:"cover_image"`
	Images          *[]string `json:"images"`
	Tags            *[]string `json:"tags"`
}

// ActivityView 列表/详情响应，附带派生字段
type ActivityView struct {
	model.Activity
	CurrentParticipants int64 `json:"current_participants"`
	IsRegistrationOpen  bool  `json:"is_registration_open"`
	IsParticipant       bool  `json:"is_participant"`
}

// getActivityID 从路径参数解析活动ID
func getActivityID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("活动ID格式错误"))
		return 0, false
	}
	return uint(id), true
}

// initialStatus 新建活动的初始状态由配置决定
func initialStatus() string {
	if config.Get().Activity.InitialStatus == model.ActivityStatusDraft {
		return model.ActivityStatusDraft
	}
	return model.ActivityStatusOngoing
}

// CreateActivity 处理创建活动请求
func CreateActivity(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.ActivityCreate)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	var req ActivityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定创建活动请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if !model.ValidActivityType(req.Type) {
		response.Fail(c, response.ErrInvalidRequest.WithTips("活动类型不合法"))
		return
	}
	if req.EndDate < req.StartDate {
		response.Fail(c, response.ErrInvalidRequest.WithTips("结束时间不能早于开始时间"))
		return
	}

	// 积分规则必须存在且启用
	var rule model.PointRule
	if err := database.DB.First(&rule, "id = ?", req.PointRuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("积分规则不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if rule.Status != model.PointRuleStatusActive {
		response.Fail(c, response.ErrInvalidRequest.WithTips("积分规则未启用"))
		return
	}

	activity := model.Activity{
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		PointRuleID:     req.PointRuleID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Location:        req.Location,
		MaxParticipants: *req.MaxParticipants,
		Status:          initialStatus(),
		OrganizerID:     payload.UserID,
		Images:          req.Images,
		Tags:            req.Tags,
	}
	if req.CoverImage != "" {
		activity.CoverImage = req.CoverImage
	}

	if err := database.DB.Create(&activity).Error; err != nil {
		log.Error("创建活动失败", "error", err, "title", req.Title)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	// 带组织者和积分规则信息返回
	if err := database.DB.Preload("PointRule").Preload("Organizer").
		First(&activity, "id = ?", activity.ID).Error; err != nil {
		log.Error("回查活动失败", "error", err, "id", activity.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("活动创建成功",
		"id", activity.ID,
		"title", activity.Title,
		"organizer_id", payload.UserID,
		"status", activity.Status)

	response.Success(c, activity)
}

// ListActivitiesReq 定义获取活动列表的查询参数结构体
type ListActivitiesReq struct {
	Title  string `form:"title"`  // 标题模糊查询
	Type   string `form:"type"`   // 活动类型精确筛选
	Status string `form:"status"` // 状态精确筛选，学生会被强制为 ongoing
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ListActivities 获取活动列表（支持查询参数）
func ListActivities(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.ActivityList)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	var req ListActivitiesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		log.Error("绑定查询参数失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	query := database.DB.Model(&model.Activity{})

	if req.Title != "" {
		query = query.Where("title LIKE ?", "%"+req.Title+"%")
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	// 学生只能看到已发布的活动，忽略其传入的状态筛选
	if payload.RoleID < model.RoleAdmin {
		query = query.Where("status = ?", model.ActivityStatusOngoing)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("获取活动总数失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var activities []model.Activity
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("PointRule").Preload("Organizer").
		Order("created_at DESC").Offset(offset).Limit(req.Limit).
		Find(&activities).Error; err != nil {
		log.Error("获取活动列表失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	views, err := annotate(activities, payload.UserID)
	if err != nil {
		log.Error("统计参与人数失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"activities":  views,
		"total":       total,
		"page":        req.Page,
		"limit":       req.Limit,
		"total_pages": (total + int64(req.Limit) - 1) / int64(req.Limit),
	})
}

// annotate 为活动补上派生字段：当前人数、报名是否开放、请求者是否已报名
func annotate(activities []model.Activity, userID uint) ([]ActivityView, error) {
	views := make([]ActivityView, 0, len(activities))
	if len(activities) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}

	type countRow struct {
		ActivityID uint
		Count      int64
	}
	var counts []countRow
	if err := database.DB.Model(&model.ActivityParticipant{}).
		Select("activity_id, COUNT(*) AS count").
		Where("activity_id IN ?", ids).
		Group("activity_id").Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByID := make(map[uint]int64, len(counts))
	for _, row := range counts {
		countByID[row.ActivityID] = row.Count
	}

	var mine []uint
	if err := database.DB.Model(&model.ActivityParticipant{}).
		Where("activity_id IN ? AND user_id = ?", ids, userID).
		Pluck("activity_id", &mine).Error; err != nil {
		return nil, err
	}
	isMine := make(map[uint]bool, len(mine))
	for _, id := range mine {
		isMine[id] = true
	}

	for _, a := range activities {
		count := countByID[a.ID]
		views = append(views, ActivityView{
			Activity:            a,
			CurrentParticipants: count,
			IsRegistrationOpen: a.Status == model.ActivityStatusOngoing &&
				(a.MaxParticipants == 0 || count < int64(a.MaxParticipants)),
			IsParticipant: isMine[a.ID],
		})
	}
	return views, nil
}

// GetActivity 获取单个活动
func GetActivity(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.ActivityGet)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var activity model.Activity
	if err := database.DB.Preload("PointRule").Preload("Organizer").
		First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("活动不存在", "id", id)
			response.Fail(c, response.ErrNotFound.WithTips("活动不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	// 学生只能查看已发布的活动
	if payload.RoleID < model.RoleAdmin && activity.Status != model.ActivityStatusOngoing {
		response.Fail(c, response.ErrForbidden.WithTips("无权查看该活动"))
		return
	}

	views, err := annotate([]model.Activity{activity}, payload.UserID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, views[0])
}

// UpdateActivity 处理更新活动请求。
// 已发布的活动只允许改描述、地点、起止时间和人数上限，其余字段静默丢弃。
func UpdateActivity(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityUpdate); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var req ActivityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定更新活动请求失败", "error", err, "id", id)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var activity model.Activity
	if err := database.DB.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("活动不存在", "id", id)
			response.Fail(c, response.ErrNotFound.WithTips("活动不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	ongoing := activity.Status == model.ActivityStatusOngoing

	// 任何状态都可改的字段
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.Location != nil {
		activity.Location = *req.Location
	}
	if req.StartDate != nil {
		activity.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		activity.EndDate = *req.EndDate
	}
	if req.MaxParticipants != nil {
		activity.MaxParticipants = *req.MaxParticipants
	}

	// 发布后不可再改的字段，静默丢弃而不是报错
	if !ongoing {
		if req.Title != nil {
			activity.Title = *req.Title
		}
		if req.Type != nil {
			if !model.ValidActivityType(*req.Type) {
				response.Fail(c, response.ErrInvalidRequest.WithTips("活动类型不合法"))
				return
			}
			activity.Type = *req.Type
		}
		if req.PointRuleID != nil {
			activity.PointRuleID = *req.PointRuleID
		}
		if req.CoverImage != nil {
			activity.CoverImage = *req.CoverImage
		}
		if req.Images != nil {
			activity.Images = *req.Images
		}
		if req.Tags != nil {
			activity.Tags = *req.Tags
		}
	}

	if activity.EndDate < activity.StartDate {
		response.Fail(c, response.ErrInvalidRequest.WithTips("结束时间不能早于开始时间"))
		return
	}

	if err := database.DB.Save(&activity).Error; err != nil {
		log.Error("更新活动失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("活动更新成功", "id", activity.ID, "title", activity.Title)

	response.Success(c, activity)
}

// DeleteActivity 处理删除活动请求。
// 草稿和已取消的活动可以删除；已发布和已完成的不允许（结算流水要留审计）。
func DeleteActivity(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityDelete); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var activity model.Activity
	if err := database.DB.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("活动不存在", "id", id)
			response.Fail(c, response.ErrNotFound.WithTips("活动不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if activity.Status == model.ActivityStatusOngoing || activity.Status == model.ActivityStatusCompleted {
		log.Warn("活动状态不允许删除", "id", id, "status", activity.Status)
		response.Fail(c, response.ErrConflict.WithTips("已发布的活动不能删除"))
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activity.ID).
			Unscoped().Delete(&model.ActivityParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&activity).Error
	})
	if err != nil {
		log.Error("删除活动失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("活动删除成功", "id", id, "title", activity.Title)

	response.Success(c)
}
