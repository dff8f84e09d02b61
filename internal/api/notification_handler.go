package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projectpulse/internal/service/feed"
)

// NotificationHandler 暴露活动流快照。轮询由 feed.Hub 在后台做，
// 这里只读当前会话的状态，请求路径上不等任何网络调用。
type NotificationHandler struct {
	hub    *feed.Hub
	logger *zap.Logger
}

func NewNotificationHandler(hub *feed.Hub, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{hub: hub, logger: logger}
}

// GetNotifications handles GET /notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, _ := currentUserID(c)

	events, newIDs, hasUnseen, err := h.hub.Snapshot(userID)

	resp := gin.H{
		"activities": events,
		"new_ids":    newIDs,
		"has_unseen": hasUnseen,
	}
	// 连续两次以上拉取失败才暴露降级状态，单次失败对客户端不可见
	if err != nil {
		resp["feed_degraded"] = true
		resp["feed_error"] = "activity feed is temporarily stale"
		h.logger.Warn("Serving degraded activity feed", zap.Int("user_id", userID), zap.Error(err))
	}

	c.JSON(http.StatusOK, resp)
}

// AcknowledgeNotifications handles POST /notifications/ack
// 清掉未读标记，列表内容不变。
func (h *NotificationHandler) AcknowledgeNotifications(c *gin.Context) {
	userID, _ := currentUserID(c)
	h.hub.Acknowledge(userID)
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}
