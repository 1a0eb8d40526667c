package model

import "time"

type User struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"column:password_hash;not null" json:"-"`
	Role        Role       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RoleSetはDBのスカラーroleを集合表現へ変換する。
// 変換は読み込み境界で一度だけ行い、以降のチェックは集合同士で行う。
func (u *User) RoleSet() RoleSet {
	return ParseRoleSet(u.Role)
}
