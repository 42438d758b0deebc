package reward

import (
	"fmt"
	"strconv"

	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/internal/module/points"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type RewardCreateReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"required,max=255"`
	Points      *uint  `json:"points" binding:"required"`
	Stock       *uint  `json:"stock" binding:"required"`
	Image       string `json:"image" binding:"max=255"`
}

type RewardUpdateReq struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	Points      *uint   `json:"points"`
	Stock       *uint   `json:"stock"`
	Image       *string `json:"image" binding:"omitempty,max=255"`
	Status      *string `json:"status"`
}

func getRewardID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("奖品ID无效"))
		return 0, false
	}
	return uint(id), true
}

// CreateReward 上架奖品
func CreateReward(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.RewardManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	var req RewardCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if *req.Points == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("兑换所需积分必须为正"))
		return
	}

	reward := model.Reward{
		Name:        req.Name,
		Description: req.Description,
		Points:      *req.Points,
		Stock:       *req.Stock,
		Image:       req.Image,
		Status:      model.RewardStatusActive,
	}
	if err := database.DB.Create(&reward).Error; err != nil {
		log.Error("创建奖品失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("奖品已上架", "reward_id", reward.ID, "name", reward.Name)
	response.Success(c, reward)
}

// ListRewards 学生只能看到上架中的奖品，管理员可按状态过滤
func ListRewards(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.RewardRead)
	if authErr != nil {
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

	query := database.DB.Model(&model.Reward{})
	if keyword := c.Query("keyword"); keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}
	if payload.RoleID < model.RoleAdmin {
		query = query.Where("status = ?", model.RewardStatusActive)
	} else if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var rewards []model.Reward
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rewards).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"rewards":     rewards,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func GetReward(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.RewardRead)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRewardID(c)
	if !ok {
		return
	}

	var reward model.Reward
	if err := database.DB.First(&reward, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("奖品不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if payload.RoleID < model.RoleAdmin && reward.Status != model.RewardStatusActive {
		response.Fail(c, response.ErrNotFound.WithTips("奖品不存在"))
		return
	}

	response.Success(c, reward)
}

// UpdateReward 部分更新奖品信息，含补货和上下架
func UpdateReward(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.RewardManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRewardID(c)
	if !ok {
		return
	}

	var req RewardUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if req.Points != nil && *req.Points == 0 {
		response.Fail(c, response.ErrInvalidRequest.WithTips("兑换所需积分必须为正"))
		return
	}
	if req.Status != nil &&
		*req.Status != model.RewardStatusActive && *req.Status != model.RewardStatusInactive {
		response.Fail(c, response.ErrInvalidRequest.WithTips("奖品状态无效"))
		return
	}

	var updated model.Reward
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var reward model.Reward
		if err := database.LockForUpdate(tx).First(&reward, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("奖品不存在")
			}
			return err
		}

		if req.Name != nil {
			reward.Name = *req.Name
		}
		if req.Description != nil {
			reward.Description = *req.Description
		}
		if req.Points != nil {
			reward.Points = *req.Points
		}
		if req.Stock != nil {
			reward.Stock = *req.Stock
		}
		if req.Image != nil {
			reward.Image = *req.Image
		}
		if req.Status != nil {
			reward.Status = *req.Status
		}

		if err := tx.Save(&reward).Error; err != nil {
			return err
		}
		updated = reward
		return nil
	})
	if err != nil {
		var respErr *response.Error
		if errors.As(err, &respErr) {
			response.Fail(c, respErr)
			return
		}
		log.Error("更新奖品失败", "error", err, "reward_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, updated)
}

func DeleteReward(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.RewardManage); authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRewardID(c)
	if !ok {
		return
	}

	result := database.DB.Delete(&model.Reward{}, "id = ?", id)
	if result.Error != nil {
		log.Error("删除奖品失败", "error", result.Error, "reward_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("奖品不存在"))
		return
	}

	log.Info("奖品已下架删除", "reward_id", id)
	response.Success(c, nil)
}

// Exchange 积分兑换：锁行校验库存和余额，扣分、记流水、减库存同事务落库
func Exchange(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.RewardExchange)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}
	id, ok := getRewardID(c)
	if !ok {
		return
	}

	var exchanged model.Reward
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var reward model.Reward
		if err := database.LockForUpdate(tx).First(&reward, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("奖品不存在")
			}
			return err
		}
		if reward.Status != model.RewardStatusActive {
			return response.ErrConflict.WithTips("奖品已下架")
		}
		if reward.Stock == 0 {
			return response.ErrInsufficientStock
		}

		description := fmt.Sprintf("兑换奖励「%s」", reward.Name)
		if err := points.Deduct(tx, payload.UserID, int(reward.Points), description, 0); err != nil {
			return err
		}

		if err := tx.Model(&model.Reward{}).Where("id = ?", reward.ID).
			Update("stock", gorm.Expr("stock - ?", 1)).Error; err != nil {
			return err
		}

		reward.Stock--
		exchanged = reward
		return nil
	})
	if err != nil {
		var respErr *response.Error
		if errors.As(err, &respErr) {
			response.Fail(c, respErr)
			return
		}
		log.Error("兑换奖品失败", "error", err, "reward_id", id, "user_id", payload.UserID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("奖品兑换成功", "reward_id", id, "user_id", payload.UserID)
	response.Success(c, gin.H{
		"reward": exchanged,
	})
}
