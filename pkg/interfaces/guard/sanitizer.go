package guard

import (
	"time"

	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              Task - 清理任务
// ============================================================================

// Task 一次延迟清理的可追踪句柄
//
// 任务句柄可被多个调用方持有和等待；
// 去重表中同一资源至多存在一个非终态任务。
type Task interface {
	// HandleID 返回目标资源的 ID
	HandleID() string

	// Status 返回当前任务状态
	Status() types.TaskStatus

	// Attempts 返回已执行的清理尝试次数
	Attempts() int

	// Err 返回终态错误（成功或未结束时为 nil）
	Err() error

	// Done 返回任务进入终态时关闭的通道
	Done() <-chan struct{}
}

// ============================================================================
//                              Sanitizer - 延迟清理调度器
// ============================================================================

// Sanitizer 延迟清理调度器
//
// 清理在有界并发的后台工作池上执行，完全位于触发操作的
// 关键路径之外。失败的清理按有界退避重试，耗尽后标记为
// 永久失败并通过指标与日志上报，绝不无限重试。
type Sanitizer interface {
	// Schedule 调度对句柄的清理
	//
	// 同一句柄已有任务在 pending/running 时返回既有任务而非新建；
	// 先前任务已进入终态后再次调度则产生独立的新任务。
	Schedule(h Handle) Task

	// Active 返回当前非终态任务数
	Active() int

	// Drain 等待在途任务完成或超时
	//
	// 超时后立即返回（记一条警告），关闭流程绝不无限阻塞。
	Drain(timeout time.Duration) error
}
