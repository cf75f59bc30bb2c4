// Package sanitizer 实现延迟后台清理调度器
//
// 清理在有界并发的工作池上执行，完全位于触发操作的关键路径之外：
//   - 去重以句柄 ID 为键：同一资源至多一个非终态任务
//   - 可配置的沉降延迟，给在途正常活动留出收尾时间
//   - 失败清理按指数退避做有界重试，耗尽后标记永久失败并上报
//   - Drain 在预算内等待在途任务，超时立即返回，关闭绝不无限阻塞
package sanitizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/profiler"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("core/sanitizer")

// 清理调度器相关错误
var (
	// ErrSanitizerClosed 调度器已关闭
	ErrSanitizerClosed = errors.New("sanitizer closed")

	// ErrQueueFull 任务队列已满
	ErrQueueFull = errors.New("sanitization queue full")

	// ErrDrainTimeout 等待在途任务超过预算
	ErrDrainTimeout = errors.New("drain timeout exceeded")

	// ErrAbandoned 任务因进程关闭被放弃
	ErrAbandoned = errors.New("sanitization abandoned at shutdown")
)

// Sanitizer 延迟清理调度器
type Sanitizer struct {
	cfg   config.SanitizerConfig
	clock clock.Clock
	prof  *profiler.Profiler

	mu       sync.Mutex
	inflight map[string]*Task

	queue  chan *Task
	stopCh chan struct{}
	wg     sync.WaitGroup

	started atomic.Bool
	closed  atomic.Bool
}

var _ guard.Sanitizer = (*Sanitizer)(nil)

// New 创建清理调度器
//
// prof 可为 nil（测试场景），此时跳过指标上报。
func New(cfg config.SanitizerConfig, clk clock.Clock, prof *profiler.Profiler) *Sanitizer {
	if clk == nil {
		clk = clock.New()
	}
	return &Sanitizer{
		cfg:      cfg,
		clock:    clk,
		prof:     prof,
		inflight: make(map[string]*Task),
		queue:    make(chan *Task, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 启动工作池
func (s *Sanitizer) Start(_ context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	logger.Info("清理调度器启动", "workers", s.cfg.Workers, "delay", s.cfg.Delay.String())
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return nil
}

// Close 关闭调度器
//
// 未完成的任务被标记为放弃；调用方应先以 Drain 给在途任务留出预算。
func (s *Sanitizer) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSanitizerClosed
	}

	close(s.stopCh)
	s.wg.Wait()

	// 标记所有残留任务为放弃
	s.mu.Lock()
	remaining := make([]*Task, 0, len(s.inflight))
	for _, t := range s.inflight {
		remaining = append(remaining, t)
	}
	s.inflight = make(map[string]*Task)
	s.mu.Unlock()

	for _, t := range remaining {
		t.fail(ErrAbandoned)
		s.reportFinished(t, types.OutcomeAbandoned)
		logger.Warn("清理任务被放弃",
			"handleID", log.TruncateID(t.handleID, 16),
			"attempts", t.Attempts())
	}

	logger.Info("清理调度器已关闭", "abandoned", len(remaining))
	return nil
}

// ============================================================================
//                              调度
// ============================================================================

// Schedule 调度对句柄的清理
//
// 同一句柄已有 pending/running 任务时返回既有任务（去重）；
// 先前任务已进入终态后再次调度产生独立的新任务。
// 本方法在请求路径上被调用，除去重表的细粒度锁外不做任何等待。
func (s *Sanitizer) Schedule(h guard.Handle) guard.Task {
	now := s.clock.Now()

	if h == nil {
		return newFailedTask(&nilHandle{}, now, errors.New("nil handle"))
	}
	if s.closed.Load() {
		logger.Warn("调度器已关闭，拒绝清理调度", "handleID", log.TruncateID(h.ID(), 16))
		return newFailedTask(h, now, ErrSanitizerClosed)
	}

	id := h.ID()

	s.mu.Lock()
	if existing, ok := s.inflight[id]; ok {
		s.mu.Unlock()
		logger.Debug("清理任务去重命中", "handleID", log.TruncateID(id, 16))
		return existing
	}
	t := newTask(h, now)
	s.inflight[id] = t
	closed := s.closed.Load()
	s.mu.Unlock()

	// 与 Close 竞争的窄窗口：插入后发现已关闭则立即放弃
	if closed {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
		t.fail(ErrAbandoned)
		return t
	}

	if s.prof != nil {
		s.prof.SanitizationStarted()
	}

	select {
	case s.queue <- t:
		logger.Info("清理任务已调度",
			"handleID", log.TruncateID(id, 16),
			"kind", h.Kind().String(),
			"delay", s.cfg.Delay.String())
	default:
		// 队列满：立即失败而不是阻塞请求路径
		s.finish(t, fmt.Errorf("schedule %s: %w", id, ErrQueueFull), types.OutcomeFailed)
		logger.Error("清理队列已满，任务被拒绝", "handleID", log.TruncateID(id, 16))
	}

	return t
}

// Active 返回当前非终态任务数
func (s *Sanitizer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Drain 等待在途任务完成或超时
//
// 超时后记一条警告并立即返回，关闭流程绝不无限阻塞。
func (s *Sanitizer) Drain(timeout time.Duration) error {
	s.mu.Lock()
	tasks := make([]*Task, 0, len(s.inflight))
	for _, t := range s.inflight {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	if len(tasks) == 0 {
		return nil
	}

	deadline := s.clock.Timer(timeout)
	defer deadline.Stop()

	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-deadline.C:
			logger.Warn("drain 超出预算，放弃等待",
				"timeout", timeout.String(),
				"remaining", s.Active())
			return ErrDrainTimeout
		}
	}
	return nil
}

// ============================================================================
//                              工作池
// ============================================================================

// worker 工作协程：串行消费队列中的任务
func (s *Sanitizer) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case t := <-s.queue:
			s.run(t)
		}
	}
}

// run 执行单个清理任务：沉降延迟 → 清理 → 有界退避重试
func (s *Sanitizer) run(t *Task) {
	start := s.clock.Now()

	// 沉降延迟：给在途的正常活动留出收尾时间
	if s.cfg.Delay > 0 {
		if !s.wait(s.cfg.Delay) {
			s.finish(t, ErrAbandoned, types.OutcomeAbandoned)
			return
		}
	}

	t.markRunning()

	for attempt := 0; ; attempt++ {
		t.attempts.Add(1)

		err := s.cleanup(t.handle)
		if err == nil {
			s.finish(t, nil, types.OutcomeSucceeded)
			logger.Info("清理完成",
				"handleID", log.TruncateID(t.handleID, 16),
				"attempts", t.Attempts(),
				"elapsed", s.clock.Now().Sub(start).String())
			return
		}

		if attempt >= s.cfg.MaxRetries {
			s.finish(t, fmt.Errorf("sanitization permanently failed after %d attempts: %w", t.Attempts(), err), types.OutcomeFailed)
			logger.Error("清理永久失败，需要人工介入",
				"handleID", log.TruncateID(t.handleID, 16),
				"attempts", t.Attempts(),
				"error", err)
			return
		}

		backoff := s.backoff(attempt)
		logger.Warn("清理失败，退避后重试",
			"handleID", log.TruncateID(t.handleID, 16),
			"attempt", t.Attempts(),
			"backoff", backoff.String(),
			"error", err)

		if !s.wait(backoff) {
			s.finish(t, ErrAbandoned, types.OutcomeAbandoned)
			return
		}
	}
}

// cleanup 带超时执行一次真实清理，并隔离其 panic
func (s *Sanitizer) cleanup(h guard.Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CleanupTimeout)
	defer cancel()
	return h.Cleanup(ctx)
}

// wait 等待指定时长；调度器关闭时返回 false
func (s *Sanitizer) wait(d time.Duration) bool {
	timer := s.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.stopCh:
		return false
	}
}

// backoff 计算第 attempt 次失败后的退避时长（指数，封顶）
func (s *Sanitizer) backoff(attempt int) time.Duration {
	d := s.cfg.BackoffBase << attempt
	if d > s.cfg.BackoffMax || d <= 0 {
		d = s.cfg.BackoffMax
	}
	return d
}

// finish 将任务转入终态并从去重表移除
//
// 先移除再关闭 done：等待者醒来时，对同一句柄的新调度
// 必然产生新任务，不会拿到旧任务。
func (s *Sanitizer) finish(t *Task, err error, outcome types.Outcome) {
	s.mu.Lock()
	if cur, ok := s.inflight[t.handleID]; ok && cur == t {
		delete(s.inflight, t.handleID)
	}
	s.mu.Unlock()

	if err == nil {
		t.succeed()
	} else {
		t.fail(err)
	}

	s.reportFinished(t, outcome)
}

// reportFinished 上报任务结束指标
func (s *Sanitizer) reportFinished(t *Task, outcome types.Outcome) {
	if s.prof == nil {
		return
	}
	kind := t.handle.Kind()
	s.prof.SanitizationFinished(
		kind.Component(),
		kindPattern(kind),
		outcome,
		s.clock.Now().Sub(t.createdAt),
	)
}

// kindPattern 资源类型对应的参考寄生模式
func kindPattern(kind types.ResourceKind) types.PatternID {
	switch kind {
	case types.KindConnection:
		return types.PatternNoAck
	case types.KindSubscription:
		return types.PatternSubscriptionLeak
	case types.KindPool:
		return types.PatternPoolOrphan
	default:
		return ""
	}
}

// nilHandle 空调度的占位句柄
type nilHandle struct{}

func (n *nilHandle) ID() string                      { return "" }
func (n *nilHandle) Kind() types.ResourceKind        { return types.KindUnknown }
func (n *nilHandle) Origin() string                  { return "" }
func (n *nilHandle) Cleanup(_ context.Context) error { return nil }
