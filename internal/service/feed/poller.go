package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
	"projectpulse/pkg/circuitbreaker"
	"projectpulse/pkg/metrics"
)

// FetchFunc 拉取一次活动流快照，最新在前。
type FetchFunc func(ctx context.Context) ([]model.ActivityEvent, error)

// Poller 以固定间隔驱动 Tracker。
// 保证：同一时刻最多一个在途抓取；Stop 之后不再应用任何结果；
// 单次失败静默等下一轮，连续失败才对外暴露错误。
type Poller struct {
	tracker  *Tracker
	fetch    FetchFunc
	interval time.Duration
	breaker  *circuitbreaker.Breaker
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	failures int
	lastErr  error
	started  bool
}

func NewPoller(tracker *Tracker, fetch FetchFunc, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		tracker:  tracker,
		fetch:    fetch,
		interval: interval,
		breaker:  circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:   logger,
	}
}

// Start 启动轮询循环。重复调用是 no-op。
func (p *Poller) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx)
}

// Stop 停掉定时器并丢弃在途抓取的结果。等待循环退出后返回，
// 之后 Tracker 不会再被这个 Poller 更新。
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	p.cancel()
	<-p.done
}

// Err 连续两次以上失败时返回最近的错误，否则 nil。
// 单次失败由下一个周期吸收，不打扰用户。
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures >= 2 {
		return p.lastErr
	}
	return nil
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	// 启动时先拉一次，不等第一个 tick
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 循环体串行执行，天然保证不会有并发的重叠抓取
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	var fresh []model.ActivityEvent

	err := p.breaker.Execute(func() error {
		var fetchErr error
		fresh, fetchErr = p.fetch(ctx)
		return fetchErr
	})

	// 取消后丢弃结果，绝不把迟到的响应写进 Tracker
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		metrics.IncrementFeedPoll("failure")
		p.mu.Lock()
		p.failures++
		p.lastErr = apperr.Transient("activity feed fetch failed", err)
		failures := p.failures
		p.mu.Unlock()

		if failures == 1 {
			p.logger.Debug("Feed poll failed, will retry next cycle", zap.Error(err))
		} else {
			p.logger.Warn("Feed poll failing repeatedly",
				zap.Error(err),
				zap.Int("consecutive_failures", failures),
			)
		}
		return
	}

	metrics.IncrementFeedPoll("success")
	p.mu.Lock()
	p.failures = 0
	p.lastErr = nil
	p.mu.Unlock()

	diff := p.tracker.Apply(fresh)
	if len(diff.NewItems) > 0 {
		p.logger.Debug("New activity detected", zap.Int("count", len(diff.NewItems)))
	}
}
