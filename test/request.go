package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"campus-club-system/internal/global/jwt"
	"campus-club-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Request 构造 handler 入参：请求体、路径参数、query 和登录主体
type Request struct {
	Method string
	Body   any
	Params gin.Params
	Query  url.Values
	Actor  *jwt.Claims
}

// DoRequest 直接调用 handler 并解出统一响应体
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, req Request) (resp response.ResponseBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	target := "/test"
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body *bytes.Reader
	if req.Body != nil {
		requestBytes, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(requestBytes)
	} else {
		body = bytes.NewReader(nil)
	}

	c.Request = httptest.NewRequest(method, target, body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = req.Params

	if req.Actor != nil {
		c.Set("payload", req.Actor)
	}

	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// Student 构造学生身份
func Student(userID uint) *jwt.Claims {
	return &jwt.Claims{Payload: jwt.Payload{UserID: userID, RoleID: 0}}
}

// Admin 构造管理员身份
func Admin(userID uint) *jwt.Claims {
	return &jwt.Claims{Payload: jwt.Payload{UserID: userID, RoleID: 1}}
}

// Param 单个路径参数
func Param(key, value string) gin.Params {
	return gin.Params{{Key: key, Value: value}}
}
