package points

import (
	"strconv"

	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

// History 查询当前用户的积分流水（按时间倒序）
func History(c *gin.Context) {
	payload, authErr := authz.Require(c, authz.PointsRead)
	if authErr != nil {
		response.Fail(c, authErr)
		return
	}

	listHistory(c, payload.UserID)
}

// HistoryOf 管理员查询任意用户的积分流水
func HistoryOf(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.StatsRead); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("用户ID格式错误"))
		return
	}

	listHistory(c, uint(userID))
}

func listHistory(c *gin.Context, userID uint) {
	var records []model.PointsRecord
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&records).Error; err != nil {
		log.Error("查询积分流水失败", "error", err, "user_id", userID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"records": records,
	})
}
