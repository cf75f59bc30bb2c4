package types

// ============================================================================
//                              TaskStatus - 清理任务状态
// ============================================================================

// TaskStatus 清理任务状态
type TaskStatus int32

const (
	// TaskPending 等待执行（含沉降延迟期）
	TaskPending TaskStatus = iota
	// TaskRunning 正在执行清理
	TaskRunning
	// TaskSucceeded 清理成功（终态）
	TaskSucceeded
	// TaskFailed 清理失败且重试耗尽（终态）
	TaskFailed
)

// String 返回任务状态的字符串表示
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal 检查状态是否为终态
//
// 终态任务会从去重表中移除，之后对同一资源的调度产生新任务。
func (s TaskStatus) Terminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// ============================================================================
//                              Outcome - 处置结果
// ============================================================================

// Outcome 清理处置结果（用于指标标签）
type Outcome string

const (
	// OutcomeSucceeded 清理成功
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed 清理最终失败
	OutcomeFailed Outcome = "failed"
	// OutcomeAbandoned 清理因进程关闭被放弃
	OutcomeAbandoned Outcome = "abandoned"
)
