package model

import (
	"gorm.io/datatypes"
)

const (
	ActivityStatusDraft     = "draft"
	ActivityStatusOngoing   = "ongoing"
	ActivityStatusCompleted = "completed"
	ActivityStatusCancelled = "cancelled"
)

const (
	ActivityTypeVolunteer = "volunteer"
	ActivityTypeAcademic  = "academic"
	ActivityTypeSports    = "sports"
	ActivityTypeArt       = "art"
	ActivityTypeOther     = "other"
)

type Activity struct {
	Model
	Title           string                      `gorm:"type:varchar(100);index;not null" json:"title"`
	Description     string                      `gorm:"type:text" json:"description"`
	Type            string                      `gorm:"type:varchar(20);not null" json:"type"`
	PointRuleID     uint                        `gorm:"not null" json:"point_rule_id"`
	StartDate       int64                       `gorm:"index" json:"start_date"` // 毫秒时间戳
	EndDate         int64                       `gorm:"" json:"end_date"`
	Location        string                      `gorm:"type:varchar(255);not null" json:"location"`
	MaxParticipants uint                        `gorm:"default:0" json:"max_participants"` // 0 表示不限人数
	Status          string                      `gorm:"type:varchar(10);index;default:draft;not null" json:"status"`
	OrganizerID     uint                        `gorm:"index;not null" json:"organizer_id"`
	CoverImage      string                      `gorm:"type:varchar(255);default:/images/default-activity.jpg" json:"cover_image"`
	Images          datatypes.JSONSlice[string] `gorm:"type:json" json:"images"`
	Tags            datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`
	CheckInCode     string                      `gorm:"type:varchar(50)" json:"-"` // 签到共享密钥，不下发

	PointRule PointRule `gorm:"foreignKey:PointRuleID;references:ID" json:"point_rule"`
	Organizer User      `gorm:"foreignKey:OrganizerID;references:ID" json:"organizer"`
}

// IsTerminal completed 和 cancelled 是终态，不允许任何后续流转
func (a *Activity) IsTerminal() bool {
	return a.Status == ActivityStatusCompleted || a.Status == ActivityStatusCancelled
}

// ValidActivityType 校验活动类型枚举
func ValidActivityType(t string) bool {
	switch t {
	case ActivityTypeVolunteer, ActivityTypeAcademic, ActivityTypeSports, ActivityTypeArt, ActivityTypeOther:
		return true
	}
	return false
}
