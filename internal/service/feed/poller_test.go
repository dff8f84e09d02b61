package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"projectpulse/internal/model"
)

func TestPollerAppliesFetches(t *testing.T) {
	tr := NewTracker()
	var calls atomic.Int64

	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		n := calls.Add(1)
		if n == 1 {
			return events(1, 2), nil
		}
		return events(3, 1, 2), nil
	}

	p := NewPoller(tr, fetch, 10*time.Millisecond, zap.NewNop())
	p.Start()
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for {
		snapshot, _, _ := tr.Snapshot()
		if len(snapshot) == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for second poll to apply")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if !tr.HasUnseen() {
		t.Error("new event should set unseen")
	}
}

func TestPollerStopDiscardsInFlight(t *testing.T) {
	tr := NewTracker()
	tr.Apply(events(1))
	tr.Acknowledge()

	// 在途抓取直到取消才返回结果，模拟 Stop 时网络请求尚未完成
	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		<-ctx.Done()
		return events(9, 1), nil
	}

	p := NewPoller(tr, fetch, time.Hour, zap.NewNop())
	p.Start()
	p.Stop()

	snapshot, _, _ := tr.Snapshot()
	for _, e := range snapshot {
		if e.ID == 9 {
			t.Fatal("result of a fetch in flight at Stop must be discarded")
		}
	}
	if tr.HasUnseen() {
		t.Error("discarded fetch must not set unseen")
	}
}

func TestPollerNoOverlappingFetches(t *testing.T) {
	tr := NewTracker()
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		// 拖慢抓取，跨过多个 tick
		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return events(1), nil
	}

	p := NewPoller(tr, fetch, 5*time.Millisecond, zap.NewNop())
	p.Start()
	time.Sleep(150 * time.Millisecond)
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if maxInFlight != 1 {
		t.Fatalf("max in-flight fetches = %d, want 1", maxInFlight)
	}
}

func TestPollerSingleFailureIsSilent(t *testing.T) {
	tr := NewTracker()
	var calls atomic.Int64

	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("blip")
		}
		return events(1), nil
	}

	p := NewPoller(tr, fetch, 10*time.Millisecond, zap.NewNop())
	p.Start()
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for retry cycle")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := p.Err(); err != nil {
		t.Fatalf("single transient failure must stay silent, got %v", err)
	}
}

func TestPollerRepeatedFailuresSurface(t *testing.T) {
	tr := NewTracker()
	var calls atomic.Int64

	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		calls.Add(1)
		return nil, errors.New("store down")
	}

	p := NewPoller(tr, fetch, 5*time.Millisecond, zap.NewNop())
	p.Start()
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for repeated failures")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := p.Err(); err == nil {
		t.Fatal("consecutive failures must surface a visible error")
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	tr := NewTracker()
	fetch := func(ctx context.Context) ([]model.ActivityEvent, error) {
		return events(1), nil
	}

	p := NewPoller(tr, fetch, 10*time.Millisecond, zap.NewNop())
	p.Start()
	p.Start() // 重复启动是 no-op，不会开第二个循环
	p.Stop()
	p.Stop() // 重复停止也安全
}
