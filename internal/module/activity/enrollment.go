package activity

import (
	"time"

	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Signup 学生报名。容量校验和落库在同一事务内，
// 活动行锁住后人数不会再变，(activity_id, user_id) 唯一索引兜底并发重复报名。
func Signup(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.ActivitySignup)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	registeredAt := time.Now()
	var activity model.Activity

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).First(&activity, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("活动不存在")
			}
			return response.ErrDatabase.WithOrigin(err)
		}

		if activity.Status != model.ActivityStatusOngoing {
			return response.ErrConflict.WithTips("该活动未发布，无法报名")
		}

		var registered int64
		if err := tx.Model(&model.ActivityParticipant{}).
			Where("activity_id = ? AND user_id = ?", activity.ID, payload.UserID).
			Count(&registered).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		if registered > 0 {
			return response.ErrAlreadyExists.WithTips("您已报名该活动")
		}

		if activity.MaxParticipants > 0 {
			var count int64
			if err := tx.Model(&model.ActivityParticipant{}).
				Where("activity_id = ?", activity.ID).
				Count(&count).Error; err != nil {
				return response.ErrDatabase.WithOrigin(err)
			}
			if count >= int64(activity.MaxParticipants) {
				return response.ErrActivityFull
			}
		}

		participant := model.ActivityParticipant{
			ActivityID:   activity.ID,
			UserID:       payload.UserID,
			Status:       model.ParticipantStatusRegistered,
			RegisteredAt: registeredAt,
		}
		if err := tx.Create(&participant).Error; err != nil {
			if isDuplicateKey(err) {
				return response.ErrAlreadyExists.WithTips("您已报名该活动")
			}
			return response.ErrDatabase.WithOrigin(err)
		}
		return nil
	})
	if txErr != nil {
		response.Fail(c, txErr)
		return
	}

	log.Info("报名成功",
		"activity_id", activity.ID,
		"user_id", payload.UserID)

	views, err := annotate([]model.Activity{activity}, payload.UserID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, views[0])
}

// CancelSignup 学生取消报名。台账行直接物理删除，允许再次报名
func CancelSignup(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.ActivityCancelSignup)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var activity model.Activity
		if err := database.LockForUpdate(tx).First(&activity, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("活动不存在")
			}
			return response.ErrDatabase.WithOrigin(err)
		}

		if activity.Status != model.ActivityStatusOngoing {
			return response.ErrConflict.WithTips("该活动未发布，无法取消报名")
		}

		result := tx.Where("activity_id = ? AND user_id = ?", activity.ID, payload.UserID).
			Unscoped().Delete(&model.ActivityParticipant{})
		if result.Error != nil {
			return response.ErrDatabase.WithOrigin(result.Error)
		}
		if result.RowsAffected == 0 {
			return response.ErrConflict.WithTips("您未报名该活动")
		}
		return nil
	})
	if txErr != nil {
		response.Fail(c, txErr)
		return
	}

	log.Info("取消报名成功", "activity_id", id, "user_id", payload.UserID)

	response.Success(c, gin.H{
		"message": "取消报名成功",
	})
}

// CheckInReq 定义签到请求的结构体
type CheckInReq struct {
	CheckInCode string `json:"check_in_code" binding:"required"`
}

// CheckIn 学生签到。签到码区分大小写精确比对，未设置签到码时一律失败
func CheckIn(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.ActivityCheckIn)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var req CheckInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定签到请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		var activity model.Activity
		if err := tx.First(&activity, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrNotFound.WithTips("活动不存在")
			}
			return response.ErrDatabase.WithOrigin(err)
		}

		if activity.Status != model.ActivityStatusOngoing {
			return response.ErrConflict.WithTips("该活动未发布或已结束，无法签到")
		}

		if activity.CheckInCode == "" || req.CheckInCode != activity.CheckInCode {
			return response.ErrCheckInCode
		}

		var participant model.ActivityParticipant
		if err := tx.Where("activity_id = ? AND user_id = ?", activity.ID, payload.UserID).
			First(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.ErrConflict.WithTips("您未报名该活动")
			}
			return response.ErrDatabase.WithOrigin(err)
		}

		participant.Status = model.ParticipantStatusCheckedIn
		if err := tx.Save(&participant).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		return nil
	})
	if txErr != nil {
		response.Fail(c, txErr)
		return
	}

	log.Info("签到成功", "activity_id", id, "user_id", payload.UserID)

	response.Success(c, gin.H{
		"message": "签到成功",
	})
}

// SetCheckInCodeReq 定义设置签到码请求的结构体
type SetCheckInCodeReq struct {
	CheckInCode string `json:"check_in_code" binding:"required"`
}

// SetCheckInCode 管理员设置签到码，无条件覆盖
func SetCheckInCode(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivitySetCode); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var req SetCheckInCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("绑定设置签到码请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var activity model.Activity
	if err := database.DB.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("活动不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	activity.CheckInCode = req.CheckInCode
	if err := database.DB.Save(&activity).Error; err != nil {
		log.Error("设置签到码失败", "error", err, "id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("签到码设置成功", "activity_id", id)

	response.Success(c, gin.H{
		"message": "签到码设置成功",
	})
}

// Participants 管理员查看报名台账，按报名时间升序
func Participants(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityParticipants); authErr != nil {
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
			response.Fail(c, response.ErrNotFound.WithTips("活动不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var participants []model.ActivityParticipant
	if err := database.DB.Preload("User").
		Where("activity_id = ?", id).
		Order("registered_at ASC").
		Find(&participants).Error; err != nil {
		log.Error("查询参与者失败", "error", err, "activity_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, participants)
}

// isDuplicateKey 识别唯一索引冲突，兼容 MySQL 1062 和 gorm 的统一翻译
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
