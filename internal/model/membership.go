package model

import "time"

// Membership 项目成员关系。owner 隐式为成员且不可被移除，
// 其余成员为观察者权限。
type Membership struct {
	ProjectID int       `json:"project_id"`
	UserID    int       `json:"user_id"`
	AddedAt   time.Time `json:"added_at"`
}

// Member 是带用户信息的成员视图，用于成员列表展示。
type Member struct {
	UserID  int       `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsOwner bool      `json:"is_owner"`
	AddedAt time.Time `json:"added_at"`
}
