package detector

import (
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              SubLeak - 订阅泄漏检测器
// ============================================================================

// SubLeakDetector 订阅泄漏检测器
//
// 标记条件：作用域内的存活订阅数达到 LeakThreshold。
// 「存活」排除属主已不可达的订阅，避免把正常增长误报为泄漏；
// 属主可达性由可插拔的 OwnerLiveness 策略判定。
type SubLeakDetector struct {
	registry *registry.Registry
	liveness guard.OwnerLiveness
}

var _ guard.Detector = (*SubLeakDetector)(nil)

// NewSubLeakDetector 创建订阅泄漏检测器
//
// liveness 为 nil 时视所有属主存活，策略选择留给上层装配。
func NewSubLeakDetector(reg *registry.Registry, liveness guard.OwnerLiveness) *SubLeakDetector {
	return &SubLeakDetector{registry: reg, liveness: liveness}
}

// Name 返回检测器名称
func (d *SubLeakDetector) Name() string {
	return "subscription_leak"
}

// Kind 返回适用的资源类型
func (d *SubLeakDetector) Kind() types.ResourceKind {
	return types.KindSubscription
}

// Detect 对订阅作用域句柄求值
func (d *SubLeakDetector) Detect(h guard.Handle) (*guard.Verdict, bool) {
	sub, ok := h.(guard.SubscriptionHandle)
	if !ok {
		return nil, false
	}

	state := sub.SubState()
	live := 0
	for _, s := range state.Subscribers {
		if d.liveness == nil || d.liveness.Alive(s.Owner) {
			live++
		}
	}

	threshold := d.registry.Snapshot().Subscriptions.LeakThreshold
	if live < threshold {
		return nil, false
	}

	// 超出阈值一倍以上视为严重
	sev := types.SeverityWarning
	if live >= threshold*2 {
		sev = types.SeverityCritical
	}

	return &guard.Verdict{
		Handle:   h,
		Detector: d.Name(),
		Pattern:  types.PatternSubscriptionLeak,
		Severity: sev,
		Evidence: map[string]any{
			"live":      live,
			"total":     len(state.Subscribers),
			"threshold": threshold,
		},
	}, true
}
