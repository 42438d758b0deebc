package model

const (
	PointsTypeEarn  = "earn"
	PointsTypeSpend = "spend"
)

// PointsRecord 积分流水，只追加不修改，作为余额变动的审计轨迹
type PointsRecord struct {
	Model
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Points      int    `gorm:"not null" json:"points"` // 有符号增量，earn 为正 spend 为负
	Type        string `gorm:"type:varchar(10);not null" json:"type"`
	Description string `gorm:"type:varchar(255);not null" json:"description"`
	ActivityID  uint   `gorm:"index" json:"activity_id"` // 0 表示与活动无关
}
