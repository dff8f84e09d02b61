package api

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"projectpulse/internal/mq"
)

type Publisher interface {
	Publish(routingKey string, payload any) error
}

// activityRecorder 给各 handler 复用的活动流发布入口。
// 发布失败只记日志：主操作已经落库，活动流是尽力而为。
type activityRecorder struct {
	producer Publisher
	logger   *zap.Logger
}

func (a *activityRecorder) record(actorID int, format string, args ...any) {
	payload := mq.ActivityRecordedPayload{
		ActorID:     actorID,
		Description: fmt.Sprintf(format, args...),
		OccurredAt:  time.Now(),
	}
	if err := a.producer.Publish(mq.RoutingKeyActivityRecorded, payload); err != nil {
		a.logger.Warn("Failed to publish activity event",
			zap.Error(err),
			zap.Int("actor_id", actorID),
		)
	}
}
