package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"projectpulse/internal/model"
	"projectpulse/internal/mq"
	"projectpulse/internal/repository"
	"projectpulse/internal/util"
	"projectpulse/pkg/metrics"
)

// ActivityRecordedHandler 把 activity.recorded 事件落成活动流记录。
// MQ 是 at-least-once 投递，用 redis SetNX 去重保证落库幂等。
type ActivityRecordedHandler struct {
	activityRepo *repository.ActivityRepository
	userRepo     *repository.UserRepository
	deduper      *util.Deduper
	logger       *zap.Logger
}

func NewActivityRecordedHandler(
	activityRepo *repository.ActivityRepository,
	userRepo *repository.UserRepository,
	deduper *util.Deduper,
	logger *zap.Logger,
) *ActivityRecordedHandler {
	return &ActivityRecordedHandler{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		deduper:      deduper,
		logger:       logger,
	}
}

func (h *ActivityRecordedHandler) Handle(ctx context.Context, data json.RawMessage) error {
	var payload mq.ActivityRecordedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		// 消息体坏了，重投也不会好，直接丢弃
		h.logger.Error("Malformed activity payload, dropping", zap.Error(err))
		return nil
	}

	eventKey := fmt.Sprintf("%d-%d", payload.ActorID, payload.OccurredAt.UnixNano())
	if !h.deduper.AcquireOnce(ctx, "activity_recorded", eventKey) {
		h.logger.Debug("Duplicate activity event, skipping",
			zap.String("event_key", eventKey),
		)
		metrics.IncrementActivityRecorded("duplicate")
		return nil
	}

	actorName := "Unknown"
	if u, err := h.userRepo.FindByID(ctx, payload.ActorID); err == nil {
		actorName = u.Name
	} else {
		h.logger.Warn("Failed to resolve actor name",
			zap.Error(err),
			zap.Int("actor_id", payload.ActorID),
		)
	}

	event := &model.ActivityEvent{
		ActorID:     payload.ActorID,
		ActorName:   actorName,
		Description: payload.Description,
		CreatedAt:   payload.OccurredAt,
	}
	if err := h.activityRepo.Insert(ctx, event); err != nil {
		h.logger.Error("Failed to store activity event",
			zap.Error(err),
			zap.Int("actor_id", payload.ActorID),
		)
		metrics.IncrementActivityRecorded("failed")
		return err
	}

	metrics.IncrementActivityRecorded("stored")
	h.logger.Info("Activity event stored",
		zap.Int("id", event.ID),
		zap.Int("actor_id", payload.ActorID),
	)
	return nil
}
