package response

import (
	"errors"
	"net/http"

	"campus-club-system/config"

	sentrylib "github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// 业务错误码按 HTTP 状态分段：码值前三位即对应的 HTTP 状态
var (
	ErrInvalidRequest = newError(40001, "请求参数错误")
	ErrUnauthorized   = newError(40101, "未登录或登录已过期")
	ErrTokenInvalid   = newError(40102, "无效的令牌")
	ErrForbidden      = newError(40301, "没有操作权限")
	ErrNotFound       = newError(40401, "资源不存在")

	ErrConflict           = newError(40901, "当前状态不允许该操作")
	ErrAlreadyExists      = newError(40902, "记录已存在")
	ErrActivityFull       = newError(40903, "活动名额已满")
	ErrCheckInCode        = newError(40904, "签到码错误")
	ErrInsufficientPoints = newError(40905, "积分不足")
	ErrInsufficientStock  = newError(40906, "奖励库存不足")

	ErrInternal = newError(50000, "服务内部错误")
	ErrDatabase = newError(50001, "数据库操作失败")
)

type ResponseBody struct {
	Code   int32  `json:"code"`
	Msg    string `json:"msg"`
	Data   any    `json:"data,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// Success 返回成功响应，data 可选
func Success(c *gin.Context, data ...any) {
	body := ResponseBody{Code: 200, Msg: "success"}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.JSON(http.StatusOK, body)
}

// Fail 返回失败响应，err 不是 *Error 时归为内部错误
func Fail(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = ErrInternal.WithOrigin(err)
	}

	body := ResponseBody{Code: e.Code, Msg: e.Message}
	// 原始错误只在 debug 模式下发给前端
	if config.Get().Mode == config.ModeDebug {
		body.Origin = e.Origin
	}
	c.JSON(httpStatus(e.Code), body)
}

// httpStatus 业务码前三位即 HTTP 状态码
func httpStatus(code int32) int {
	status := int(code / 100)
	if status < 100 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// Recovery 捕获 handler panic，上报 Sentry 并返回统一错误
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		if sentrylib.CurrentHub().Client() != nil {
			sentrylib.CurrentHub().Recover(r)
		}
		c.Abort()
		c.JSON(http.StatusInternalServerError, ResponseBody{
			Code: ErrInternal.Code,
			Msg:  ErrInternal.Message,
		})
	}
}
