package feed

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"projectpulse/internal/model"
)

func TestHubSessionsAreIndependent(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		return events(1, 2), nil
	}
	h := NewHub(fetch, 10*time.Millisecond, zap.NewNop())
	defer h.Close()

	waitFor := func(userID int) {
		deadline := time.After(2 * time.Second)
		for {
			snapshot, _, _, _ := h.Snapshot(userID)
			if len(snapshot) == 2 {
				return
			}
			select {
			case <-deadline:
				t.Fatalf("user %d never saw the snapshot", userID)
			case <-time.After(5 * time.Millisecond):
			}
		}
	}

	waitFor(1)
	waitFor(2)

	// 用户 1 确认已读，不影响用户 2 的未读标记
	h.Acknowledge(1)

	_, _, hasUnseen1, _ := h.Snapshot(1)
	_, _, hasUnseen2, _ := h.Snapshot(2)
	if hasUnseen1 {
		t.Error("user 1 acknowledged, unseen should be false")
	}
	if !hasUnseen2 {
		t.Error("user 2 did not acknowledge, unseen should be true")
	}
}

func TestHubDropStopsPolling(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		return events(1), nil
	}
	h := NewHub(fetch, 10*time.Millisecond, zap.NewNop())
	defer h.Close()

	h.Snapshot(1)
	h.Drop(1)
	// Drop 后再访问会新建会话，不应 panic 或复用已停的轮询器
	snapshot, _, _, _ := h.Snapshot(1)
	_ = snapshot
}

func TestHubCloseIsTerminal(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		return events(1), nil
	}
	h := NewHub(fetch, 10*time.Millisecond, zap.NewNop())

	h.Snapshot(1)
	h.Close()

	snapshot, _, hasUnseen, err := h.Snapshot(1)
	if snapshot != nil || hasUnseen || err != nil {
		t.Error("closed hub must return an empty view")
	}
}
