package model

const (
	PointRuleStatusActive   = "active"
	PointRuleStatusInactive = "inactive"
)

type PointRule struct {
	Model
	RuleName     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"rule_name"`
	ActivityType string `gorm:"type:varchar(20);not null" json:"activity_type"`
	BasePoints   uint   `gorm:"not null" json:"base_points"`
	BonusPoints  uint   `gorm:"not null" json:"bonus_points"`
	Description  string `gorm:"type:varchar(255)" json:"description"`
	Status       string `gorm:"type:varchar(10);default:active;not null" json:"status"`
	CreatedByID  uint   `gorm:"not null" json:"created_by_id"`
}

// Award 活动结算时给每位已签到参与者的积分值
func (r *PointRule) Award() int {
	return int(r.BasePoints + r.BonusPoints)
}
