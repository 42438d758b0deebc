package model

import "time"

const (
	ParticipantStatusRegistered = "registered"
	ParticipantStatusCheckedIn  = "checked-in"
	ParticipantStatusAbsent     = "absent"
)

// ActivityParticipant 报名台账，参与状态的唯一事实来源。
// (activity_id, user_id) 上的唯一索引保证同一用户最多报名一次，
// 并发重复报名由数据库裁决而不是先查后写。
type ActivityParticipant struct {
	Model
	ActivityID   uint      `gorm:"uniqueIndex:idx_activity_user;not null" json:"activity_id"`
	UserID       uint      `gorm:"uniqueIndex:idx_activity_user;not null" json:"user_id"`
	Status       string    `gorm:"type:varchar(10);default:registered;not null" json:"status"`
	RegisteredAt time.Time `gorm:"index;not null" json:"registered_at"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"user"`
}
