package stats

import (
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
	(&ModuleStats{}).Init()
	test.InitTestDB(t)
}

func TestSummary(t *testing.T) {
	setup(t)

	users := []model.User{
		{Username: "stu1", Password: "x", Email: "stu1@campus.edu", Phone: "1", RoleID: model.RoleStudent, Points: 30, Status: model.UserStatusActive},
		{Username: "stu2", Password: "x", Email: "stu2@campus.edu", Phone: "1", RoleID: model.RoleStudent, Points: 50, Status: model.UserStatusActive},
		{Username: "admin1", Password: "x", Email: "a@campus.edu", Phone: "1", RoleID: model.RoleAdmin, Status: model.UserStatusActive},
	}
	for i := range users {
		require.NoError(t, database.DB.Create(&users[i]).Error)
	}

	require.NoError(t, database.DB.Create(&model.Activity{
		Title: "活动", Type: model.ActivityTypeVolunteer, PointRuleID: 1,
		Location: "某处", Status: model.ActivityStatusOngoing, OrganizerID: users[2].ID,
	}).Error)
	require.NoError(t, database.DB.Create(&model.PointsRecord{
		UserID: users[1].ID, Points: 50, Type: model.PointsTypeEarn, Description: "结算",
	}).Error)

	resp := test.DoRequest(t, Summary,
		test.Request{Method: http.MethodGet, Actor: test.Admin(users[2].ID)})
	data := test.Data(t, resp)

	require.EqualValues(t, 2, data["total_students"])
	require.EqualValues(t, 1, data["total_activities"])
	require.EqualValues(t, 1, data["ongoing_activities"])
	require.EqualValues(t, 50, data["points_issued"])

	// 排行榜按积分降序
	ranking, ok := data["ranking"].([]any)
	require.True(t, ok)
	require.Len(t, ranking, 2)
	top, ok := ranking[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "stu2", top["username"])

	// 学生无权查看
	test.ErrorEqual(t, response.ErrForbidden,
		test.DoRequest(t, Summary, test.Request{Method: http.MethodGet, Actor: test.Student(users[0].ID)}))
}
