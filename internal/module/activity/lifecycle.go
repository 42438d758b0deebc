package activity

import (
	"fmt"

	"campus-club-system/config"
	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/httpclient"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/internal/module/points"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// StartActivity 草稿 -> 发布。其他状态一律拒绝
func StartActivity(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityStart); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	activity, err := transition(id, model.ActivityStatusDraft, model.ActivityStatusOngoing, "活动不是草稿状态，无法开始")
	if err != nil {
		response.Fail(c, err)
		return
	}

	log.Info("活动已发布", "id", activity.ID, "title", activity.Title)
	response.Success(c, activity)
}

// CancelActivity 草稿或进行中 -> 已取消。终态不再流转
func CancelActivity(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityUpdate); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var activity model.Activity
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&activity, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("活动不存在")
			}
			return response.ErrDatabase.WithOrigin(err)
		}
		if activity.IsTerminal() {
			return response.ErrConflict.WithTips("活动已结束，无法取消")
		}
		activity.Status = model.ActivityStatusCancelled
		if err := tx.Save(&activity).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		return nil
	})
	if txErr != nil {
		response.Fail(c, txErr)
		return
	}

	log.Info("活动已取消", "id", activity.ID, "title", activity.Title)
	response.Success(c, activity)
}

// transition 单状态流转，from 不匹配时返回 Conflict 且状态不变
func transition(id uint, from, to, conflictTips string) (*model.Activity, error) {
	var activity model.Activity
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&activity, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("活动不存在")
			}
			return response.ErrDatabase.WithOrigin(err)
		}
		if activity.Status != from {
			return response.ErrConflict.WithTips(conflictTips)
		}
		activity.Status = to
		if err := tx.Save(&activity).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// SettlementResult 结算结果：逐人记录成功与失败，一个坏记录不拖垮整批
type SettlementResult struct {
	SettledUserIDs []uint `json:"settled_user_ids"`
	FailedUserIDs  []uint `json:"failed_user_ids"`
	AwardPerUser   int    `json:"award_per_user"`
	AbsentCount    int64  `json:"absent_count"`
}

// CompleteActivity 进行中 -> 已完成，然后结算：
// 已签到者按积分规则加分并记流水，未签到者批量置为缺席。
func CompleteActivity(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityComplete); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	activity, err := transition(id, model.ActivityStatusOngoing, model.ActivityStatusCompleted, "活动未开始或已结束")
	if err != nil {
		response.Fail(c, err)
		return
	}

	result := settle(activity)

	log.Info("活动结算完成",
		"id", activity.ID,
		"title", activity.Title,
		"settled", len(result.SettledUserIDs),
		"failed", len(result.FailedUserIDs),
		"absent", result.AbsentCount)

	notifyCompleted(activity, result)

	response.Success(c, gin.H{
		"activity":   activity,
		"settlement": result,
	})
}

// settle 给已签到参与者逐人加分。每人一个事务，单人失败只记录不中断。
func settle(activity *model.Activity) *SettlementResult {
	result := &SettlementResult{
		SettledUserIDs: []uint{},
		FailedUserIDs:  []uint{},
	}

	var rule model.PointRule
	if err := database.DB.First(&rule, "id = ?", activity.PointRuleID).Error; err != nil {
		// 规则丢失时不加分，但缺席标记照常执行
		log.Error("积分规则加载失败，跳过加分", "error", err, "activity_id", activity.ID)
	} else {
		result.AwardPerUser = rule.Award()

		var checkedIn []model.ActivityParticipant
		if err := database.DB.
			Where("activity_id = ? AND status = ?", activity.ID, model.ParticipantStatusCheckedIn).
			Find(&checkedIn).Error; err != nil {
			log.Error("查询已签到参与者失败", "error", err, "activity_id", activity.ID)
		}

		description := fmt.Sprintf("参加活动「%s」获得积分", activity.Title)
		for _, participant := range checkedIn {
			userID := participant.UserID
			err := database.DB.Transaction(func(tx *gorm.DB) error {
				return points.Earn(tx, userID, result.AwardPerUser, description, activity.ID)
			})
			if err != nil {
				log.Error("参与者加分失败",
					"error", err,
					"activity_id", activity.ID,
					"user_id", userID)
				result.FailedUserIDs = append(result.FailedUserIDs, userID)
				continue
			}
			result.SettledUserIDs = append(result.SettledUserIDs, userID)
		}
	}

	// 仍是已报名状态的参与者统一标记缺席
	absent := database.DB.Model(&model.ActivityParticipant{}).
		Where("activity_id = ? AND status = ?", activity.ID, model.ParticipantStatusRegistered).
		Update("status", model.ParticipantStatusAbsent)
	if absent.Error != nil {
		log.Error("标记缺席失败", "error", absent.Error, "activity_id", activity.ID)
	} else {
		result.AbsentCount = absent.RowsAffected
	}

	return result
}

// notifyCompleted 结算后回调外部 webhook，尽力而为
func notifyCompleted(activity *model.Activity, result *SettlementResult) {
	url := config.Get().Notify.WebhookURL
	if url == "" || httpclient.Client == nil {
		return
	}

	_, err := httpclient.Client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(gin.H{
			"event":       "activity.completed",
			"activity_id": activity.ID,
			"title":       activity.Title,
			"settlement":  result,
		}).
		Post(url)
	if err != nil {
		log.Warn("结算通知发送失败", "error", err, "activity_id", activity.ID)
	}
}
