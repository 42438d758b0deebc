package authz

import (
	"testing"

	"campus-club-system/internal/global/jwt"
	"campus-club-system/internal/model"

	"github.com/stretchr/testify/require"
)

func claims(roleID int) *jwt.Claims {
	return &jwt.Claims{Payload: jwt.Payload{UserID: 1, RoleID: roleID}}
}

func TestCan(t *testing.T) {
	student := claims(model.RoleStudent)
	admin := claims(model.RoleAdmin)

	// 管理动作需要管理员
	require.False(t, Can(student, ActivityCreate))
	require.True(t, Can(admin, ActivityCreate))
	require.False(t, Can(student, PointRuleManage))
	require.True(t, Can(admin, PointRuleManage))

	// 参与类动作只对学生开放，管理员不是参与主体
	require.True(t, Can(student, ActivitySignup))
	require.False(t, Can(admin, ActivitySignup))
	require.True(t, Can(student, RewardExchange))
	require.False(t, Can(admin, RewardExchange))

	// 读取类动作双方都可用
	require.True(t, Can(student, ActivityList))
	require.True(t, Can(admin, ActivityList))

	// 未登录和未知动作一律拒绝
	require.False(t, Can(nil, ActivityList))
	require.False(t, Can(admin, Action("unknown:action")))
}
