package user

import (
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
	(&ModuleUser{}).Init()
	test.InitTestDB(t)
}

func studentReq(username string) RegisterReq {
	return RegisterReq{
		Username:  username,
		Password:  "Passw0rd!",
		Email:     username + "@Campus.EDU",
		Phone:     "13800000000",
		RoleID:    model.RoleStudent,
		StudentID: "2023" + username,
		College:   "计算机学院",
		Class:     "软工2301",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	setup(t)

	resp := test.DoRequest(t, Register, test.Request{Body: studentReq("stu1")})
	test.NoError(t, resp)

	// 邮箱统一小写存储
	var saved model.User
	require.NoError(t, database.DB.First(&saved, "username = ?", "stu1").Error)
	require.Equal(t, "stu1@campus.edu", saved.Email)
	require.NotEqual(t, "Passw0rd!", saved.Password)

	resp = test.DoRequest(t, Login, test.Request{Body: LoginReq{Username: "stu1", Password: "Passw0rd!"}})
	data := test.Data(t, resp)
	require.NotEmpty(t, data["token"])

	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, Login, test.Request{Body: LoginReq{Username: "stu1", Password: "wrong-pass1!"}}))

	test.ErrorEqual(t, response.ErrNotFound,
		test.DoRequest(t, Login, test.Request{Body: LoginReq{Username: "nobody", Password: "Passw0rd!"}}))
}

func TestRegisterDuplicate(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, Register, test.Request{Body: studentReq("stu1")}))

	// 用户名重复
	dup := studentReq("stu1")
	dup.Email = "other@campus.edu"
	dup.StudentID = "other"
	test.ErrorEqual(t, response.ErrAlreadyExists,
		test.DoRequest(t, Register, test.Request{Body: dup}))

	// 学号重复
	dup = studentReq("stu2")
	dup.StudentID = "2023stu1"
	test.ErrorEqual(t, response.ErrAlreadyExists,
		test.DoRequest(t, Register, test.Request{Body: dup}))
}

func TestRegisterStudentRequiresStudentInfo(t *testing.T) {
	setup(t)

	req := studentReq("stu1")
	req.StudentID = ""
	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, Register, test.Request{Body: req}))
}

func TestRegisterAdminClearsStudentInfo(t *testing.T) {
	setup(t)

	req := studentReq("admin1")
	req.RoleID = model.RoleAdmin
	test.NoError(t, test.DoRequest(t, Register, test.Request{Body: req}))

	var saved model.User
	require.NoError(t, database.DB.First(&saved, "username = ?", "admin1").Error)
	require.Empty(t, saved.StudentID)
	require.Empty(t, saved.College)
}

func TestLoginInactive(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, Register, test.Request{Body: studentReq("stu1")}))
	require.NoError(t, database.DB.Model(&model.User{}).
		Where("username = ?", "stu1").
		Update("status", model.UserStatusInactive).Error)

	test.ErrorEqual(t, response.ErrForbidden,
		test.DoRequest(t, Login, test.Request{Body: LoginReq{Username: "stu1", Password: "Passw0rd!"}}))
}

func TestChangePassword(t *testing.T) {
	setup(t)
	test.NoError(t, test.DoRequest(t, Register, test.Request{Body: studentReq("stu1")}))

	var saved model.User
	require.NoError(t, database.DB.First(&saved, "username = ?", "stu1").Error)

	// 旧密码错误
	test.ErrorEqual(t, response.ErrInvalidRequest,
		test.DoRequest(t, ChangePassword, test.Request{
			Body:  ChangePasswordReq{OldPassword: "wrong1!aa", NewPassword: "NewPass1!"},
			Actor: test.Student(saved.ID),
		}))

	test.NoError(t, test.DoRequest(t, ChangePassword, test.Request{
		Body:  ChangePasswordReq{OldPassword: "Passw0rd!", NewPassword: "NewPass1!"},
		Actor: test.Student(saved.ID),
	}))

	test.NoError(t, test.DoRequest(t, Login,
		test.Request{Body: LoginReq{Username: "stu1", Password: "NewPass1!"}}))
}

func TestPasswordStrength(t *testing.T) {
	require.Error(t, validatePasswordStrength(""))
	require.Error(t, validatePasswordStrength("short1!"))
	require.Error(t, validatePasswordStrength("passwords!"))  // 缺数字
	require.Error(t, validatePasswordStrength("12345678!"))   // 缺字母
	require.Error(t, validatePasswordStrength("password123")) // 缺特殊字符
	require.NoError(t, validatePasswordStrength("Passw0rd!"))
}
