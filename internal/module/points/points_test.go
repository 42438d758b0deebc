package points

import (
	"net/http"
	"testing"

	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/test"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	(&ModulePoints{}).Init()
	test.InitTestDB(t)
}

func seedStudent(t *testing.T, username string, points int) *model.User {
	u := &model.User{
		Username: username,
		Password: "x",
		Email:    username + "@campus.edu",
		Phone:    "13800000000",
		RoleID:   model.RoleStudent,
		Points:   points,
		Status:   model.UserStatusActive,
	}
	require.NoError(t, database.DB.Create(u).Error)
	return u
}

func TestEarn(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 0)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return Earn(tx, stu.ID, 15, "参加活动获得积分", 7)
	})
	require.NoError(t, err)

	var user model.User
	require.NoError(t, database.DB.First(&user, "id = ?", stu.ID).Error)
	require.Equal(t, 15, user.Points)

	var record model.PointsRecord
	require.NoError(t, database.DB.Where("user_id = ?", stu.ID).First(&record).Error)
	require.Equal(t, 15, record.Points)
	require.Equal(t, model.PointsTypeEarn, record.Type)
	require.EqualValues(t, 7, record.ActivityID)
}

func TestEarnRejectsNonPositive(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 0)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return Earn(tx, stu.ID, 0, "零分", 0)
	})
	require.Error(t, err)
}

func TestDeductInsufficient(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 10)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return Deduct(tx, stu.ID, 20, "兑换", 0)
	})
	require.True(t, errors.Is(err, response.ErrInsufficientPoints))

	// 余额不变且无流水
	var user model.User
	require.NoError(t, database.DB.First(&user, "id = ?", stu.ID).Error)
	require.Equal(t, 10, user.Points)

	var count int64
	require.NoError(t, database.DB.Model(&model.PointsRecord{}).
		Where("user_id = ?", stu.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestDeduct(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 50)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return Deduct(tx, stu.ID, 20, "兑换奖励「帆布袋」", 0)
	})
	require.NoError(t, err)

	var user model.User
	require.NoError(t, database.DB.First(&user, "id = ?", stu.ID).Error)
	require.Equal(t, 30, user.Points)

	var record model.PointsRecord
	require.NoError(t, database.DB.Where("user_id = ?", stu.ID).First(&record).Error)
	require.Equal(t, -20, record.Points)
	require.Equal(t, model.PointsTypeSpend, record.Type)
}

func TestHistory(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 0)
	other := seedStudent(t, "stu2", 0)

	require.NoError(t, database.DB.Transaction(func(tx *gorm.DB) error {
		return Earn(tx, stu.ID, 10, "第一笔", 0)
	}))
	require.NoError(t, database.DB.Transaction(func(tx *gorm.DB) error {
		return Earn(tx, other.ID, 99, "别人的", 0)
	}))

	resp := test.DoRequest(t, History,
		test.Request{Method: http.MethodGet, Actor: test.Student(stu.ID)})
	data := test.Data(t, resp)
	records, ok := data["records"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)
}
