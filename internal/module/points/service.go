package points

import (
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"

	"gorm.io/gorm"
)

// Earn 在事务内给用户加积分并追加一条流水。
// 余额更新和流水要么同时落库要么都不落，调用方负责传入事务。
func Earn(tx *gorm.DB, userID uint, value int, description string, activityID uint) error {
	if value <= 0 {
		return response.ErrInvalidRequest.WithTips("积分值必须为正")
	}

	var user model.User
	if err := database.LockForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := tx.Model(&model.User{}).Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", value)).Error; err != nil {
		return err
	}

	record := model.PointsRecord{
		UserID:      userID,
		Points:      value,
		Type:        model.PointsTypeEarn,
		Description: description,
		ActivityID:  activityID,
	}
	return tx.Create(&record).Error
}

// Deduct 在事务内扣减用户积分并追加一条流水。
// 行锁 + 余额校验保证余额不会被并发扣成负数。
func Deduct(tx *gorm.DB, userID uint, value int, description string, activityID uint) error {
	if value <= 0 {
		return response.ErrInvalidRequest.WithTips("积分值必须为正")
	}

	var user model.User
	if err := database.LockForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if user.Points < value {
		return response.ErrInsufficientPoints
	}

	if err := tx.Model(&model.User{}).Where("id = ?", userID).
		Update("points", gorm.Expr("points - ?", value)).Error; err != nil {
		return err
	}

	record := model.PointsRecord{
		UserID:      userID,
		Points:      -value,
		Type:        model.PointsTypeSpend,
		Description: description,
		ActivityID:  activityID,
	}
	return tx.Create(&record).Error
}
