package reward

import (
	"fmt"
	"net/http"
	"testing"

	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	(&ModuleReward{}).Init()
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

func seedReward(t *testing.T, name string, cost, stock uint, status string) *model.Reward {
	r := &model.Reward{
		Name:        name,
		Description: "测试奖品",
		Points:      cost,
		Stock:       stock,
		Status:      status,
	}
	require.NoError(t, database.DB.Create(r).Error)
	return r
}

func rewardParam(r *model.Reward) gin.Params {
	return test.Param("id", fmt.Sprint(r.ID))
}

func TestExchange(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 100)
	r := seedReward(t, "定制帆布袋", 40, 2, model.RewardStatusActive)

	resp := test.DoRequest(t, Exchange, test.Request{Params: rewardParam(r), Actor: test.Student(stu.ID)})
	test.NoError(t, resp)

	var user model.User
	require.NoError(t, database.DB.First(&user, "id = ?", stu.ID).Error)
	require.Equal(t, 60, user.Points)

	var saved model.Reward
	require.NoError(t, database.DB.First(&saved, "id = ?", r.ID).Error)
	require.EqualValues(t, 1, saved.Stock)

	var record model.PointsRecord
	require.NoError(t, database.DB.Where("user_id = ?", stu.ID).First(&record).Error)
	require.Equal(t, -40, record.Points)
	require.Equal(t, model.PointsTypeSpend, record.Type)
	require.Equal(t, "兑换奖励「定制帆布袋」", record.Description)
}

func TestExchangeInsufficientPoints(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 30)
	r := seedReward(t, "定制帆布袋", 40, 2, model.RewardStatusActive)

	test.ErrorEqual(t, response.ErrInsufficientPoints,
		test.DoRequest(t, Exchange, test.Request{Params: rewardParam(r), Actor: test.Student(stu.ID)}))

	// 失败时余额、库存、流水都不变
	var user model.User
	require.NoError(t, database.DB.First(&user, "id = ?", stu.ID).Error)
	require.Equal(t, 30, user.Points)

	var saved model.Reward
	require.NoError(t, database.DB.First(&saved, "id = ?", r.ID).Error)
	require.EqualValues(t, 2, saved.Stock)

	var count int64
	require.NoError(t, database.DB.Model(&model.PointsRecord{}).
		Where("user_id = ?", stu.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestExchangeOutOfStock(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 100)
	r := seedReward(t, "定制帆布袋", 40, 0, model.RewardStatusActive)

	test.ErrorEqual(t, response.ErrInsufficientStock,
		test.DoRequest(t, Exchange, test.Request{Params: rewardParam(r), Actor: test.Student(stu.ID)}))
}

func TestExchangeInactiveReward(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 100)
	r := seedReward(t, "定制帆布袋", 40, 2, model.RewardStatusInactive)

	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, Exchange, test.Request{Params: rewardParam(r), Actor: test.Student(stu.ID)}))
}

func TestExchangeAdminForbidden(t *testing.T) {
	setup(t)
	r := seedReward(t, "定制帆布袋", 40, 2, model.RewardStatusActive)

	// 管理员不是兑换主体
	test.ErrorEqual(t, response.ErrForbidden,
		test.DoRequest(t, Exchange, test.Request{Params: rewardParam(r), Actor: test.Admin(1)}))
}

func TestListRewardsVisibility(t *testing.T) {
	setup(t)
	stu := seedStudent(t, "stu1", 0)
	seedReward(t, "上架奖品", 10, 1, model.RewardStatusActive)
	seedReward(t, "下架奖品", 10, 1, model.RewardStatusInactive)

	resp := test.DoRequest(t, ListRewards,
		test.Request{Method: http.MethodGet, Actor: test.Student(stu.ID)})
	data := test.Data(t, resp)
	require.EqualValues(t, 1, data["total"])

	resp = test.DoRequest(t, ListRewards,
		test.Request{Method: http.MethodGet, Actor: test.Admin(1)})
	data = test.Data(t, resp)
	require.EqualValues(t, 2, data["total"])
}

func TestUpdateRewardRestock(t *testing.T) {
	setup(t)
	r := seedReward(t, "定制帆布袋", 40, 0, model.RewardStatusActive)

	stock := uint(5)
	resp := test.DoRequest(t, UpdateReward, test.Request{
		Method: http.MethodPut,
		Body:   RewardUpdateReq{Stock: &stock},
		Params: rewardParam(r),
		Actor:  test.Admin(1),
	})
	test.NoError(t, resp)

	var saved model.Reward
	require.NoError(t, database.DB.First(&saved, "id = ?", r.ID).Error)
	require.EqualValues(t, 5, saved.Stock)
}
