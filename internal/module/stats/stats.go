package stats

import (
	"context"
	"encoding/json"
	"time"

	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/redis"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	summaryCacheKey = "stats:summary"
	summaryCacheTTL = 5 * time.Minute
)

// RankingEntry 积分排行榜条目
type RankingEntry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	College  string `json:"college"`
	Points   int    `json:"points"`
}

// SummaryData 全站运营概览
type SummaryData struct {
	TotalStudents     int64          `json:"total_students"`
	TotalActivities   int64          `json:"total_activities"`
	OngoingActivities int64          `json:"ongoing_activities"`
	TotalSignups      int64          `json:"total_signups"`
	TotalCheckIns     int64          `json:"total_check_ins"`
	PointsIssued      int64          `json:"points_issued"`
	Ranking           []RankingEntry `json:"ranking"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// Summary 概览统计，redis 缓存 5 分钟，缓存不可用时直查数据库
func Summary(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.StatsRead); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	if cached, ok := fromCache(c.Request.Context()); ok {
		response.Success(c, cached)
		return
	}

	data, err := collect()
	if err != nil {
		log.Error("统计汇总失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	toCache(c.Request.Context(), data)
	response.Success(c, data)
}

func collect() (*SummaryData, error) {
	data := &SummaryData{GeneratedAt: time.Now()}

	if err := database.DB.Model(&model.User{}).
		Where("role_id = ?", model.RoleStudent).
		Count(&data.TotalStudents).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.Activity{}).
		Count(&data.TotalActivities).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.Activity{}).
		Where("status = ?", model.ActivityStatusOngoing).
		Count(&data.OngoingActivities).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.ActivityParticipant{}).
		Count(&data.TotalSignups).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&model.ActivityParticipant{}).
		Where("status = ?", model.ParticipantStatusCheckedIn).
		Count(&data.TotalCheckIns).Error; err != nil {
		return nil, err
	}

	var issued *int64
	if err := database.DB.Model(&model.PointsRecord{}).
		Where("type = ?", model.PointsTypeEarn).
		Select("SUM(points)").Scan(&issued).Error; err != nil {
		return nil, err
	}
	if issued != nil {
		data.PointsIssued = *issued
	}

	if err := database.DB.Model(&model.User{}).
		Select("id AS user_id, username, college, points").
		Where("role_id = ? AND status = ?", model.RoleStudent, model.UserStatusActive).
		Order("points DESC").Limit(10).
		Scan(&data.Ranking).Error; err != nil {
		return nil, err
	}

	return data, nil
}

func fromCache(ctx context.Context) (*SummaryData, bool) {
	if redis.Client == nil {
		return nil, false
	}
	raw, err := redis.Client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var data SummaryData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return &data, true
}

func toCache(ctx context.Context, data *SummaryData) {
	if redis.Client == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := redis.Client.Set(ctx, summaryCacheKey, raw, summaryCacheTTL).Err(); err != nil {
		log.Warn("统计缓存写入失败", "error", err)
	}
}
