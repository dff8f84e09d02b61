package mq

import "time"

// ActivityRecordedPayload 描述一次用户动作，由 worker 落成活动流记录。
// ActorID + OccurredAt 共同构成幂等键。
type ActivityRecordedPayload struct {
	ActorID     int       `json:"actor_id"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}
