package pointrule

import (
	"fmt"
	"net/http"
	"net/url"
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
	(&ModulePointRule{}).Init()
	test.InitTestDB(t)
}

func createReq(name string) RuleCreateReq {
	base := uint(10)
	return RuleCreateReq{
		RuleName:     name,
		ActivityType: model.ActivityTypeVolunteer,
		BasePoints:   &base,
		BonusPoints:  5,
		Description:  "志愿服务积分",
	}
}

func TestCreateRule(t *testing.T) {
	setup(t)

	resp := test.DoRequest(t, CreateRule, test.Request{Body: createReq("志愿服务分"), Actor: test.Admin(1)})
	test.NoError(t, resp)

	var rule model.PointRule
	require.NoError(t, database.DB.First(&rule, "rule_name = ?", "志愿服务分").Error)
	require.Equal(t, model.PointRuleStatusActive, rule.Status)
	require.Equal(t, 15, rule.Award())

	// 规则名唯一
	test.ErrorEqual(t, response.ErrAlreadyExists,
		test.DoRequest(t, CreateRule, test.Request{Body: createReq("志愿服务分"), Actor: test.Admin(1)}))

	// 非法活动类型
	bad := createReq("另一条规则")
	bad.ActivityType = "party"
	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, CreateRule, test.Request{Body: bad, Actor: test.Admin(1)}))

	// 学生无权管理规则
	test.ErrorEqual(t, response.ErrForbidden,
		test.DoRequest(t, CreateRule, test.Request{Body: createReq("学生规则"), Actor: test.Student(2)}))
}

func TestUpdateRuleStatusToggle(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("志愿服务分"), Actor: test.Admin(1)}))

	var rule model.PointRule
	require.NoError(t, database.DB.First(&rule, "rule_name = ?", "志愿服务分").Error)

	inactive := model.PointRuleStatusInactive
	resp := test.DoRequest(t, UpdateRule, test.Request{
		Method: http.MethodPut,
		Body:   RuleUpdateReq{Status: &inactive},
		Params: test.Param("id", fmt.Sprint(rule.ID)),
		Actor:  test.Admin(1),
	})
	test.NoError(t, resp)

	require.NoError(t, database.DB.First(&rule, "id = ?", rule.ID).Error)
	require.Equal(t, model.PointRuleStatusInactive, rule.Status)

	// 非法状态值
	bad := "archived"
	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, UpdateRule, test.Request{
			Method: http.MethodPut,
			Body:   RuleUpdateReq{Status: &bad},
			Params: test.Param("id", fmt.Sprint(rule.ID)),
			Actor:  test.Admin(1),
		}))
}

func TestUpdateRuleRenameConflict(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("规则A"), Actor: test.Admin(1)}))
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("规则B"), Actor: test.Admin(1)}))

	var ruleB model.PointRule
	require.NoError(t, database.DB.First(&ruleB, "rule_name = ?", "规则B").Error)

	rename := "规则A"
	test.ErrorEqual(t, response.ErrAlreadyExists,
		test.DoRequest(t, UpdateRule, test.Request{
			Method: http.MethodPut,
			Body:   RuleUpdateReq{RuleName: &rename},
			Params: test.Param("id", fmt.Sprint(ruleB.ID)),
			Actor:  test.Admin(1),
		}))
}

func TestDeleteRuleReferenced(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("志愿服务分"), Actor: test.Admin(1)}))

	var rule model.PointRule
	require.NoError(t, database.DB.First(&rule, "rule_name = ?", "志愿服务分").Error)

	require.NoError(t, database.DB.Create(&model.Activity{
		Title: "活动", Type: model.ActivityTypeVolunteer, PointRuleID: rule.ID,
		Location: "某处", Status: model.ActivityStatusDraft, OrganizerID: 1,
	}).Error)

	test.ErrorEqual(t, response.ErrConflict,
		test.DoRequest(t, DeleteRule, test.Request{
			Method: http.MethodDelete,
			Params: test.Param("id", fmt.Sprint(rule.ID)),
			Actor:  test.Admin(1),
		}))

	// 解除引用后可删除
	require.NoError(t, database.DB.Unscoped().
		Delete(&model.Activity{}, "point_rule_id = ?", rule.ID).Error)
	test.NoError(t, test.DoRequest(t, DeleteRule, test.Request{
		Method: http.MethodDelete,
		Params: test.Param("id", fmt.Sprint(rule.ID)),
		Actor:  test.Admin(1),
	}))
}

func TestListRulesKeyword(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("志愿服务分"), Actor: test.Admin(1)}))
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("学术讲座分"), Actor: test.Admin(1)}))

	query := url.Values{}
	query.Set("keyword", "志愿")
	resp := test.DoRequest(t, ListRules, test.Request{Method: http.MethodGet, Query: query, Actor: test.Admin(1)})
	data := test.Data(t, resp)
	require.EqualValues(t, 1, data["total"])
}

func TestListActiveRules(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, CreateRule, test.Request{Body: createReq("启用规则"), Actor: test.Admin(1)}))

	var rule model.PointRule
	require.NoError(t, database.DB.First(&rule, "rule_name = ?", "启用规则").Error)
	require.NoError(t, database.DB.Create(&model.PointRule{
		RuleName: "停用规则", ActivityType: model.ActivityTypeVolunteer,
		BasePoints: 1, Status: model.PointRuleStatusInactive,
	}).Error)

	resp := test.DoRequest(t, ListActiveRules, test.Request{Method: http.MethodGet, Actor: test.Student(2)})
	data := test.Data(t, resp)
	rules, ok := data["rules"].([]any)
	require.True(t, ok)
	require.Len(t, rules, 1)
}
