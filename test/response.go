package test

import (
	"testing"

	"campus-club-system/internal/global/response"

	"github.com/stretchr/testify/require"
)

func ErrorEqual(t *testing.T, expected *response.Error, resp response.ResponseBody) {
	require.Equal(t, expected.Code, resp.Code)
}

func NoError(t *testing.T, resp response.ResponseBody) {
	require.Equal(t, int32(200), resp.Code, "unexpected error: %s", resp.Msg)
}

// Data 取出响应数据并断言为 map
func Data(t *testing.T, resp response.ResponseBody) map[string]any {
	NoError(t, resp)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "response data is not an object: %v", resp.Data)
	return data
}
