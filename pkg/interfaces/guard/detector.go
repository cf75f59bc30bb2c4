package guard

import (
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              Verdict - 检测结论
// ============================================================================

// Verdict 单次检测的结论
//
// 结论是瞬态数据：在一次求值内产生和消费，
// 除指标与溯源记录外不做任何持久化。
type Verdict struct {
	// Handle 被标记的资源句柄
	Handle Handle

	// Detector 产生结论的检测器名称
	Detector string

	// Pattern 命中的寄生模式
	Pattern types.PatternID

	// Severity 严重程度
	Severity types.Severity

	// Evidence 证据快照（阈值、观测值等，用于日志与溯源）
	Evidence map[string]any
}

// ============================================================================
//                              Detector - 检测器
// ============================================================================

// Detector 寄生模式检测器
//
// 检测器是观测状态的纯函数：只读取句柄的状态快照，
// 无 I/O、无副作用。实现必须能在请求路径上以亚毫秒级开销完成。
type Detector interface {
	// Name 返回检测器的唯一名称
	Name() string

	// Kind 返回检测器适用的资源类型
	Kind() types.ResourceKind

	// Detect 对句柄求值
	//
	// 返回值:
	//   - *Verdict: 检测结论（未命中时为 nil）
	//   - bool: 是否命中
	Detect(h Handle) (*Verdict, bool)
}

// ============================================================================
//                              Chain - 检测链
// ============================================================================

// Chain 按注册顺序运行适用检测器的检测链
//
// 规则：
//   - 只运行与句柄类型匹配的检测器，按注册顺序
//   - 首个 Critical 结论立即短路
//   - 否则严重程度最高者胜出，同级按注册顺序取先
//   - 单个检测器 panic 被捕获并记录，仅对该检测器视为未命中
type Chain interface {
	// Register 注册检测器（按调用顺序排序）
	Register(d Detector)

	// Evaluate 对句柄运行检测链
	Evaluate(h Handle) (*Verdict, bool)
}
