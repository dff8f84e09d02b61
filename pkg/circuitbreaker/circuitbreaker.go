// Package circuitbreaker 提供一个三态熔断器，保护活动流轮询的抓取路径：
// 存储端持续不可用时快速失败，避免每个周期都压在故障端点上。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 熔断，直接拒绝
	StateHalfOpen              // 试探恢复
)

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// 连续失败多少次后熔断
	FailureThreshold int
	// 半开状态下成功多少次后恢复
	SuccessThreshold int
	// 熔断持续多久后进入半开
	OpenTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

type Breaker struct {
	config Config

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

func New(config Config) *Breaker {
	return &Breaker{config: config, state: StateClosed}
}

// Execute 在熔断保护下执行 fn。熔断打开时不执行，返回 ErrOpen。
func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && time.Since(b.openedAt) >= b.config.OpenTimeout {
		b.state = StateHalfOpen
		b.successes = 0
	}
	return b.state != StateOpen
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		switch b.state {
		case StateHalfOpen:
			b.successes++
			if b.successes >= b.config.SuccessThreshold {
				b.state = StateClosed
				b.failures = 0
			}
		case StateClosed:
			b.failures = 0
		}
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
		b.state = StateOpen
		b.openedAt = time.Now()
	}
}
