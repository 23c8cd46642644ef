package domain

import "time"

// Role 三级角色
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// UserStatus 账号状态
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

type User struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name" validate:"required"`
	Email    string     `json:"email" yaml:"email" validate:"required,email"`
	Role     Role       `json:"role" yaml:"role" validate:"omitempty,oneof=admin moderator user"`
	Status   UserStatus `json:"status" yaml:"status" validate:"omitempty,oneof=active suspended"`
	Avatar   string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	JoinedAt time.Time  `json:"joinedAt,omitempty" yaml:"joinedAt,omitempty"`
}

func (u User) GetID() string { return u.ID }

func (u User) WithID(id string) User {
	u.ID = id
	return u
}

// IsAdmin 只有 admin 才能进入管理后台
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session 模拟登录产生的会话
type Session struct {
	User     User      `json:"user"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}
