package activity

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	(&ModuleActivity{}).Init()
	test.InitTestDB(t)
}

func seedUser(t *testing.T, username string, roleID int) *model.User {
	u := &model.User{
		Username:  username,
		Password:  "x",
		Email:     username + "@campus.edu",
		Phone:     "13800000000",
		RoleID:    roleID,
		StudentID: fmt.Sprintf("S%s", username),
		Status:    model.UserStatusActive,
	}
	require.NoError(t, database.DB.Create(u).Error)
	return u
}

func seedRule(t *testing.T, name string, base, bonus uint) *model.PointRule {
	r := &model.PointRule{
		RuleName:     name,
		ActivityType: model.ActivityTypeVolunteer,
		BasePoints:   base,
		BonusPoints:  bonus,
		Status:       model.PointRuleStatusActive,
	}
	require.NoError(t, database.DB.Create(r).Error)
	return r
}

func seedActivity(t *testing.T, ruleID uint, status string, maxParticipants uint) *model.Activity {
	a := &model.Activity{
		Title:           "社区志愿服务",
		Description:     "周末社区服务",
		Type:            model.ActivityTypeVolunteer,
		PointRuleID:     ruleID,
		StartDate:       time.Now().UnixMilli(),
		EndDate:         time.Now().Add(2 * time.Hour).UnixMilli(),
		Location:        "一号楼",
		MaxParticipants: maxParticipants,
		Status:          status,
		OrganizerID:     1,
	}
	require.NoError(t, database.DB.Create(a).Error)
	return a
}

func activityParam(a *model.Activity) gin.Params {
	return test.Param("id", fmt.Sprint(a.ID))
}

func TestCreateActivity(t *testing.T) {
	setup(t)
	admin := seedUser(t, "admin1", model.RoleAdmin)
	rule := seedRule(t, "志愿服务基础分", 10, 5)

	max := uint(20)
	req := ActivityCreateReq{
		Title:           "图书馆整理",
		Description:     "整理馆藏",
		Type:            model.ActivityTypeVolunteer,
		PointRuleID:     rule.ID,
		StartDate:       time.Now().UnixMilli(),
		EndDate:         time.Now().Add(time.Hour).UnixMilli(),
		Location:        "图书馆",
		MaxParticipants: &max,
	}
	resp := test.DoRequest(t, CreateActivity, test.Request{Body: req, Actor: test.Admin(admin.ID)})
	test.NoError(t, resp)

	var saved model.Activity
	require.NoError(t, database.DB.First(&saved, "title = ?", "图书馆整理").Error)
	require.Equal(t, model.ActivityStatusOngoing, saved.Status)
	require.Equal(t, admin.ID, saved.OrganizerID)
}

func TestCreateActivityValidation(t *testing.T) {
	setup(t)
	admin := seedUser(t, "admin1", model.RoleAdmin)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	max := uint(0)

	// 非法类型
	req := ActivityCreateReq{
		Title: "a", Description: "b", Type: "party", PointRuleID: rule.ID,
		StartDate: 1, EndDate: 2, Location: "c", MaxParticipants: &max,
	}
	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, CreateActivity, test.Request{Body: req, Actor: test.Admin(admin.ID)}))

	// 结束早于开始
	req.Type = model.ActivityTypeVolunteer
	req.StartDate, req.EndDate = 100, 50
	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, CreateActivity, test.Request{Body: req, Actor: test.Admin(admin.ID)}))

	// 规则不存在
	req.StartDate, req.EndDate = 1, 2
	req.PointRuleID = 9999
	test.ErrorEqual(t, response.ErrNotFound,
		test.DoRequest(t, CreateActivity, test.Request{Body: req, Actor: test.Admin(admin.ID)}))

	// 学生无权创建
	test.ErrorEqual(t, response.ErrForbidden,
		test.DoRequest(t, CreateActivity, test.Request{Body: req, Actor: test.Student(2)}))
}

func TestSignupCapacityAndDuplicate(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	s2 := seedUser(t, "stu2", model.RoleStudent)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 1)

	resp := test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s1.ID)})
	test.NoError(t, resp)

	// 重复报名优先于名额判断
	test.ErrorEqual(t, response.ErrAlreadyExists,
		test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s1.ID)}))

	test.ErrorEqual(t, response.ErrActivityFull,
		test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s2.ID)}))

	var count int64
	require.NoError(t, database.DB.Model(&model.ActivityParticipant{}).
		Where("activity_id = ?", a.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSignupRequiresOngoing(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	a := seedActivity(t, rule.ID, model.ActivityStatusDraft, 0)

	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s1.ID)}))
}

func TestCancelSignupAllowsResignup(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 1)

	test.NoError(t, test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s1.ID)}))
	test.NoError(t, test.DoRequest(t, CancelSignup,
		test.Request{Method: http.MethodDelete, Params: activityParam(a), Actor: test.Student(s1.ID)}))

	// 未报名时取消报错
	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, CancelSignup,
			test.Request{Method: http.MethodDelete, Params: activityParam(a), Actor: test.Student(s1.ID)}))

	// 取消后名额释放，可再次报名
	test.NoError(t, test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s1.ID)}))
}

func TestCheckInCode(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)

	test.NoError(t, test.DoRequest(t, Signup, test.Request{Params: activityParam(a), Actor: test.Student(s1.ID)}))

	// 未设置签到码时任何输入都失败
	test.ErrorEqual(t, response.ErrCheckInCode,
		test.DoRequest(t, CheckIn, test.Request{
			Body: CheckInReq{CheckInCode: "abcd"}, Params: activityParam(a), Actor: test.Student(s1.ID)}))

	test.NoError(t, test.DoRequest(t, SetCheckInCode, test.Request{
		Body: SetCheckInCodeReq{CheckInCode: "abcd"}, Params: activityParam(a), Actor: test.Admin(99)}))

	// 签到码区分大小写
	test.ErrorEqual(t, response.ErrCheckInCode,
		test.DoRequest(t, CheckIn, test.Request{
			Body: CheckInReq{CheckInCode: "ABCD"}, Params: activityParam(a), Actor: test.Student(s1.ID)}))

	test.NoError(t, test.DoRequest(t, CheckIn, test.Request{
		Body: CheckInReq{CheckInCode: "abcd"}, Params: activityParam(a), Actor: test.Student(s1.ID)}))

	var p model.ActivityParticipant
	require.NoError(t, database.DB.
		Where("activity_id = ? AND user_id = ?", a.ID, s1.ID).First(&p).Error)
	require.Equal(t, model.ParticipantStatusCheckedIn, p.Status)
}

func TestCheckInRequiresSignup(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)
	require.NoError(t, database.DB.Model(a).Update("check_in_code", "abcd").Error)

	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, CheckIn, test.Request{
			Body: CheckInReq{CheckInCode: "abcd"}, Params: activityParam(a), Actor: test.Student(s1.ID)}))
}

func TestStartRequiresDraft(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)

	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, StartActivity,
			test.Request{Method: http.MethodPut, Params: activityParam(a), Actor: test.Admin(1)}))

	// 流转失败时状态保持不变
	var saved model.Activity
	require.NoError(t, database.DB.First(&saved, "id = ?", a.ID).Error)
	require.Equal(t, model.ActivityStatusOngoing, saved.Status)

	draft := seedActivity(t, rule.ID, model.ActivityStatusDraft, 0)
	test.NoError(t, test.DoRequest(t, StartActivity,
		test.Request{Method: http.MethodPut, Params: activityParam(draft), Actor: test.Admin(1)}))

	require.NoError(t, database.DB.First(&saved, "id = ?", draft.ID).Error)
	require.Equal(t, model.ActivityStatusOngoing, saved.Status)
}

func TestCancelActivityTerminal(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)

	test.NoError(t, test.DoRequest(t, CancelActivity,
		test.Request{Method: http.MethodPut, Params: activityParam(a), Actor: test.Admin(1)}))

	// 终态不允许再取消
	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, CancelActivity,
			test.Request{Method: http.MethodPut, Params: activityParam(a), Actor: test.Admin(1)}))
}

func TestCompleteSettlement(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 5)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	s2 := seedUser(t, "stu2", model.RoleStudent)
	a := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)

	require.NoError(t, database.DB.Create(&model.ActivityParticipant{
		ActivityID: a.ID, UserID: s1.ID,
		Status: model.ParticipantStatusCheckedIn, RegisteredAt: time.Now(),
	}).Error)
	require.NoError(t, database.DB.Create(&model.ActivityParticipant{
		ActivityID: a.ID, UserID: s2.ID,
		Status: model.ParticipantStatusRegistered, RegisteredAt: time.Now(),
	}).Error)

	resp := test.DoRequest(t, CompleteActivity,
		test.Request{Method: http.MethodPut, Params: activityParam(a), Actor: test.Admin(1)})
	test.NoError(t, resp)

	var saved model.Activity
	require.NoError(t, database.DB.First(&saved, "id = ?", a.ID).Error)
	require.Equal(t, model.ActivityStatusCompleted, saved.Status)

	// 已签到者加分并留流水
	var u1 model.User
	require.NoError(t, database.DB.First(&u1, "id = ?", s1.ID).Error)
	require.Equal(t, 15, u1.Points)

	var record model.PointsRecord
	require.NoError(t, database.DB.
		Where("user_id = ? AND activity_id = ?", s1.ID, a.ID).First(&record).Error)
	require.Equal(t, 15, record.Points)
	require.Equal(t, model.PointsTypeEarn, record.Type)

	// 未签到者标记缺席且不加分
	var p2 model.ActivityParticipant
	require.NoError(t, database.DB.
		Where("activity_id = ? AND user_id = ?", a.ID, s2.ID).First(&p2).Error)
	require.Equal(t, model.ParticipantStatusAbsent, p2.Status)

	var u2 model.User
	require.NoError(t, database.DB.First(&u2, "id = ?", s2.ID).Error)
	require.Equal(t, 0, u2.Points)

	// 已完成的活动不能再次结算
	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, CompleteActivity,
			test.Request{Method: http.MethodPut, Params: activityParam(a), Actor: test.Admin(1)}))
}

func TestDeleteActivity(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)

	ongoing := seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)
	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, DeleteActivity,
			test.Request{Method: http.MethodDelete, Params: activityParam(ongoing), Actor: test.Admin(1)}))

	cancelled := seedActivity(t, rule.ID, model.ActivityStatusCancelled, 0)
	require.NoError(t, database.DB.Create(&model.ActivityParticipant{
		ActivityID: cancelled.ID, UserID: s1.ID,
		Status: model.ParticipantStatusRegistered, RegisteredAt: time.Now(),
	}).Error)

	test.NoError(t, test.DoRequest(t, DeleteActivity,
		test.Request{Method: http.MethodDelete, Params: activityParam(cancelled), Actor: test.Admin(1)}))

	var count int64
	require.NoError(t, database.DB.Unscoped().Model(&model.ActivityParticipant{}).
		Where("activity_id = ?", cancelled.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestListActivitiesStudentVisibility(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	seedActivity(t, rule.ID, model.ActivityStatusOngoing, 0)
	seedActivity(t, rule.ID, model.ActivityStatusDraft, 0)

	resp := test.DoRequest(t, ListActivities,
		test.Request{Method: http.MethodGet, Actor: test.Student(s1.ID)})
	data := test.Data(t, resp)
	require.EqualValues(t, 1, data["total"])

	resp = test.DoRequest(t, ListActivities,
		test.Request{Method: http.MethodGet, Actor: test.Admin(1)})
	data = test.Data(t, resp)
	require.EqualValues(t, 2, data["total"])
}

func TestGetActivityStudentForbiddenForDraft(t *testing.T) {
	setup(t)
	rule := seedRule(t, "志愿服务基础分", 10, 0)
	s1 := seedUser(t, "stu1", model.RoleStudent)
	draft := seedActivity(t, rule.ID, model.ActivityStatusDraft, 0)

	test.ErrorEqual(t, response.ErrForbidden,
		test.DoRequest(t, GetActivity,
			test.Request{Method: http.MethodGet, Params: activityParam(draft), Actor: test.Student(s1.ID)}))

	test.NoError(t, test.DoRequest(t, GetActivity,
		test.Request{Method: http.MethodGet, Params: activityParam(draft), Actor: test.Admin(1)}))
}
