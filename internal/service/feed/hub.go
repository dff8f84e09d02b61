package feed

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"projectpulse/internal/model"
)

// Hub 按用户维护活动流会话：每个会话一个 Tracker + 一个 Poller。
// 会话在首次访问时懒创建，注销或整体关停时销毁。
type Hub struct {
	fetch    FetchFunc
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[int]*session
	closed   bool
}

type session struct {
	tracker *Tracker
	poller  *Poller
}

func NewHub(fetch FetchFunc, interval time.Duration, logger *zap.Logger) *Hub {
	return &Hub{
		fetch:    fetch,
		interval: interval,
		logger:   logger,
		sessions: map[int]*session{},
	}
}

// Snapshot 返回用户当前的活动流视图：条目、新条目 id、未读标记。
// error 来自轮询器（连续失败才会非 nil），调用方据此展示错误态。
func (h *Hub) Snapshot(userID int) ([]model.ActivityEvent, []int, bool, error) {
	s := h.session(userID)
	if s == nil {
		return nil, nil, false, nil
	}
	snapshot, newIDs, hasUnseen := s.tracker.Snapshot()
	return snapshot, newIDs, hasUnseen, s.poller.Err()
}

// Acknowledge 清除用户的未读标记，幂等。
func (h *Hub) Acknowledge(userID int) {
	s := h.session(userID)
	if s != nil {
		s.tracker.Acknowledge()
	}
}

// Drop 销毁一个用户会话并停掉它的轮询器。
func (h *Hub) Drop(userID int) {
	h.mu.Lock()
	s, ok := h.sessions[userID]
	delete(h.sessions, userID)
	h.mu.Unlock()

	if ok {
		s.poller.Stop()
	}
}

// Close 停掉所有会话的轮询器，之后 Hub 不再创建新会话。
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := h.sessions
	h.sessions = map[int]*session{}
	h.mu.Unlock()

	for _, s := range sessions {
		s.poller.Stop()
	}
}

func (h *Hub) session(userID int) *session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	if s, ok := h.sessions[userID]; ok {
		return s
	}

	tracker := NewTracker()
	poller := NewPoller(tracker, h.fetch, h.interval, h.logger.With(zap.Int("user_id", userID)))
	poller.Start()

	s := &session{tracker: tracker, poller: poller}
	h.sessions[userID] = s
	return s
}
