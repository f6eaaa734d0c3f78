// 包 cardimg 管理卡图加载状态：
// - Tracker：pending → loaded | failed 的状态机，超时后强制转为 failed
// - Probe：构建时逐张请求卡图，驱动 Tracker 得到最终状态
package cardimg

import (
	"sync"
	"time"
)

// DefaultTimeout 为 pending 状态的最长等待时间。
const DefaultTimeout = 5 * time.Second

// State 为卡图加载状态。
type State int

const (
	Pending State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "pending"
}

// Tracker 跟踪单张卡片的图片状态，按图片地址区分：
// 地址变化时重新进入 pending，旧地址的事件与定时器一律作废。
type Tracker struct {
	mu      sync.Mutex
	timeout time.Duration
	notify  func(ref string, s State)
	ref     string
	state   State
	gen     uint64
	timer   *time.Timer
}

// NewTracker 创建 Tracker；notify 在每次状态变化后调用（不持有锁），可为 nil。
func NewTracker(timeout time.Duration, notify func(ref string, s State)) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if notify == nil {
		notify = func(string, State) {}
	}
	return &Tracker{timeout: timeout, notify: notify}
}

// Reset 切换到新的图片地址并进入 pending；地址未变时不做任何事并返回 false。
func (t *Tracker) Reset(ref string) bool {
	t.mu.Lock()
	if ref == t.ref && t.gen > 0 {
		t.mu.Unlock()
		return false
	}
	t.stopTimer()
	t.gen++
	gen := t.gen
	t.ref, t.state = ref, Pending
	t.timer = time.AfterFunc(t.timeout, func() { t.expire(gen) })
	t.mu.Unlock()

	t.notify(ref, Pending)
	return true
}

// Loaded 标记 ref 加载成功；ref 已过期或状态已确定时忽略。
func (t *Tracker) Loaded(ref string) { t.resolve(ref, Loaded) }

// Failed 标记 ref 加载失败；ref 已过期或状态已确定时忽略。
func (t *Tracker) Failed(ref string) { t.resolve(ref, Failed) }

// State 返回当前地址与状态。
func (t *Tracker) State() (string, State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ref, t.state
}

// Stop 取消尚未触发的超时。
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.stopTimer()
	t.mu.Unlock()
}

func (t *Tracker) resolve(ref string, s State) {
	t.mu.Lock()
	if t.gen == 0 || ref != t.ref || t.state != Pending {
		t.mu.Unlock()
		return
	}
	t.stopTimer()
	t.state = s
	t.mu.Unlock()

	t.notify(ref, s)
}

func (t *Tracker) expire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != Pending {
		t.mu.Unlock()
		return
	}
	t.state = Failed
	t.timer = nil
	ref := t.ref
	t.mu.Unlock()

	t.notify(ref, Failed)
}

// stopTimer 需持有 t.mu。
func (t *Tracker) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
