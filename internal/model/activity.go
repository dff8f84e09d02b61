package model

import "time"

// ActivityEvent 追加型活动记录，按创建时间倒序展示，客户端视角不可变。
type ActivityEvent struct {
	ID          int       `json:"id"`
	ActorID     int       `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
