package models

import (
	"time"
)

// User 后台账号表（管理员与分销商）
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                              // 主键
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`                 // 登录邮箱
	PasswordHash string     `gorm:"not null" json:"-"`                                 // 密码哈希（不返回给前端）
	Name         string     `gorm:"type:varchar(120)" json:"name"`                     // 名称
	Phone        string     `gorm:"type:varchar(40)" json:"phone,omitempty"`           // 电话
	Role         string     `gorm:"type:varchar(20);index;not null" json:"role"`       // 角色 admin / reseller
	Status       string     `gorm:"type:varchar(20);default:'active'" json:"status"`   // 账号状态
	LastLoginAt  *time.Time `json:"last_login_at"`                                     // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// UserStatusActive 正常状态
const UserStatusActive = "active"
