package model

const (
	RoleStudent = 0
	RoleAdmin   = 1
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	Model
	Username  string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	Email     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Phone     string `gorm:"type:varchar(20);not null" json:"phone"`
	RoleID    int    `gorm:"default:0;not null" json:"role_id"`
	StudentID string `gorm:"type:varchar(20);index" json:"student_id"` // 学生必填，管理员为空；唯一性在注册处校验
	College   string `gorm:"type:varchar(100);" json:"college"`
	Class     string `gorm:"type:varchar(50);" json:"class"`
	Avatar    string `gorm:"type:varchar(255);" json:"avatar"`
	Points    int    `gorm:"default:0;not null" json:"points"` // 积分余额，任何扣减前都要校验不为负
	Status    string `gorm:"type:varchar(10);default:active;not null" json:"status"`
}

func (u *User) IsAdmin() bool {
	return u.RoleID >= RoleAdmin
}
