package activity

import (
	"fmt"
	"net/url"
	"time"

	"campus-club-system/internal/global/authz"
	"campus-club-system/internal/global/database"
	"campus-club-system/internal/global/response"
	"campus-club-system/internal/model"
	"campus-club-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// StatusStat 单个状态的活动数和报名总人次
type StatusStat struct {
	Status            string `json:"status"`
	Count             int64  `json:"count"`
	TotalParticipants int64  `json:"total_participants"`
}

// Stats 按状态聚合活动数量与参与人次
func Stats(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityStats); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	var stats []StatusStat
	err := database.DB.Model(&model.Activity{}).
		Select("activity.status AS status, COUNT(DISTINCT activity.id) AS count, COUNT(activity_participant.id) AS total_participants").
		Joins("LEFT JOIN activity_participant ON activity_participant.activity_id = activity.id AND activity_participant.deleted_at IS NULL").
		Where("activity.deleted_at IS NULL").
		Group("activity.status").
		Scan(&stats).Error
	if err != nil {
		log.Error("活动统计失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"stats": stats,
	})
}

// participantRow 导出表格的行结构，列名取 excel 标签
type participantRow struct {
	Username     string `excel:"用户名"`
	StudentID    string `excel:"学号"`
	College      string `excel:"学院"`
	Class        string `excel:"班级"`
	Status       string `excel:"状态"`
	RegisteredAt string `excel:"报名时间"`
}

// ExportParticipants 导出活动报名台账为 xlsx
func ExportParticipants(c *gin.Context) {
	if _, authErr := authz.Require(c, authz.ActivityExport); authErr != nil {
		response.Fail(c, authErr)
		return
	}

	id, ok := getActivityID(c)
	if !ok {
		return
	}

	var activity model.Activity
	if err := database.DB.First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.ErrNotFound.WithTips("活动不存在"))
			return
		}
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	var participants []model.ActivityParticipant
	if err := database.DB.Preload("User").
		Where("activity_id = ?", id).
		Order("registered_at ASC").
		Find(&participants).Error; err != nil {
		log.Error("查询参与者失败", "error", err, "activity_id", id)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	rows := make([]participantRow, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, participantRow{
			Username:     p.User.Username,
			StudentID:    p.User.StudentID,
			College:      p.User.College,
			Class:        p.User.Class,
			Status:       p.Status,
			RegisteredAt: p.RegisteredAt.Format(time.DateTime),
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := tools.ExportToExcel(f, "参与名单", rows); err != nil {
		log.Error("生成导出文件失败", "error", err, "activity_id", id)
		response.Fail(c, response.ErrInternal.WithOrigin(err))
		return
	}

	filename := url.QueryEscape(activity.Title + "-参与名单.xlsx")
	c.Header("Content-Type", tools.ExcelContentType)
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, filename, filename))

	if err := f.Write(c.Writer); err != nil {
		log.Error("写出导出文件失败", "error", err, "activity_id", id)
	}
}
