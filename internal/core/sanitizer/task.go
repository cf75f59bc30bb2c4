package sanitizer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              Task - 清理任务
// ============================================================================

// Task 一次延迟清理的可追踪句柄
//
// 任务可被多个调用方持有和等待；进入终态时 done 通道关闭且
// 之后状态不再变化。终态转换通过 once 保证恰好发生一次。
type Task struct {
	handleID string
	handle   guard.Handle

	status   atomic.Int32
	attempts atomic.Int32

	mu  sync.Mutex
	err error

	once sync.Once
	done chan struct{}

	createdAt time.Time
}

var _ guard.Task = (*Task)(nil)

// newTask 创建待执行任务
func newTask(h guard.Handle, now time.Time) *Task {
	return &Task{
		handleID:  h.ID(),
		handle:    h,
		done:      make(chan struct{}),
		createdAt: now,
	}
}

// newFailedTask 创建已处于失败终态的任务
//
// 用于调度本身失败（调度器已关闭、队列满）时仍返回合法的任务句柄。
func newFailedTask(h guard.Handle, now time.Time, err error) *Task {
	t := newTask(h, now)
	t.fail(err)
	return t
}

// HandleID 返回目标资源的 ID
func (t *Task) HandleID() string {
	return t.handleID
}

// Status 返回当前任务状态
func (t *Task) Status() types.TaskStatus {
	return types.TaskStatus(t.status.Load())
}

// Attempts 返回已执行的清理尝试次数
func (t *Task) Attempts() int {
	return int(t.attempts.Load())
}

// Err 返回终态错误
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done 返回任务进入终态时关闭的通道
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// markRunning 标记任务开始执行
func (t *Task) markRunning() {
	t.status.Store(int32(types.TaskRunning))
}

// succeed 转入成功终态
func (t *Task) succeed() {
	t.once.Do(func() {
		t.status.Store(int32(types.TaskSucceeded))
		close(t.done)
	})
}

// fail 转入失败终态
func (t *Task) fail(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		t.status.Store(int32(types.TaskFailed))
		close(t.done)
	})
}
