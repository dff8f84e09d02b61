// Package feed 维护活动流的"新鲜度"：对比前后两次快照，
// 按 id 集合差找出未见过的条目，并提供幂等的已读确认。
package feed

import (
	"sync"

	"projectpulse/internal/model"
)

// Diff 是一次快照更新的结果。
type Diff struct {
	// NewItems 是新快照里 id 未出现在旧快照中的子序列，保持新快照顺序
	NewItems []model.ActivityEvent
	// HasUnseen 在出现新条目后保持为 true，直到 Acknowledge
	HasUnseen bool
}

// Tracker 只做 id 集合对比，不关心抓取节奏（节奏由 Poller 提供）。
// 对快照的收缩、乱序、过滤都安全：判断标准只有 id，从不比较长度。
type Tracker struct {
	mu        sync.Mutex
	snapshot  []model.ActivityEvent
	newIDs    []int
	hasUnseen bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Apply 用新快照替换旧快照并返回差异。
// 事件创建后不可变，所以对比只看 id，不看内容。
func (t *Tracker) Apply(fresh []model.ActivityEvent) Diff {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[int]struct{}, len(t.snapshot))
	for _, e := range t.snapshot {
		seen[e.ID] = struct{}{}
	}

	newItems := []model.ActivityEvent{}
	newIDs := []int{}
	for _, e := range fresh {
		if _, ok := seen[e.ID]; !ok {
			newItems = append(newItems, e)
			newIDs = append(newIDs, e.ID)
		}
	}

	t.snapshot = make([]model.ActivityEvent, len(fresh))
	copy(t.snapshot, fresh)

	if len(newItems) > 0 {
		t.hasUnseen = true
		t.newIDs = newIDs
	}

	return Diff{NewItems: newItems, HasUnseen: t.hasUnseen}
}

// Acknowledge 清掉未读信号。条目本身保留，只重置 unseen 标记；
// 重复调用无额外效果。
func (t *Tracker) Acknowledge() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hasUnseen = false
	t.newIDs = nil
}

// Snapshot 返回当前快照的副本和未读状态。
func (t *Tracker) Snapshot() ([]model.ActivityEvent, []int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.ActivityEvent, len(t.snapshot))
	copy(out, t.snapshot)
	ids := make([]int, len(t.newIDs))
	copy(ids, t.newIDs)
	return out, ids, t.hasUnseen
}

func (t *Tracker) HasUnseen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasUnseen
}
