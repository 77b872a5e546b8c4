package model

// 角色
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
)

// User 后台账号表 — 对应 users
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"              json:"id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"            json:"-"`
	Role         string `gorm:"type:varchar(20);not null"             json:"role"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "users" }
