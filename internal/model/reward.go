package model

const (
	RewardStatusActive   = "active"
	RewardStatusInactive = "inactive"
)

type Reward struct {
	Model
	Name        string `gorm:"type:varchar(100);index;not null" json:"name"`
	Description string `gorm:"type:varchar(255);not null" json:"description"`
	Points      uint   `gorm:"not null" json:"points"` // 兑换所需积分
	Stock       uint   `gorm:"not null" json:"stock"`  // 库存，只随成功扣分一起递减
	Image       string `gorm:"type:varchar(255)" json:"image"`
	Status      string `gorm:"type:varchar(10);default:active;not null" json:"status"`
}
