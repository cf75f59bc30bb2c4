package detector

import (
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              PoolOrphan - 池孤儿检测器
// ============================================================================

// PoolOrphanDetector 池孤儿检测器
//
// 标记条件：池的 active + idle 总量超过 MaxPoolSize，
// 说明存在借出后从未归还的资源。
type PoolOrphanDetector struct {
	registry *registry.Registry
}

var _ guard.Detector = (*PoolOrphanDetector)(nil)

// NewPoolOrphanDetector 创建池孤儿检测器
func NewPoolOrphanDetector(reg *registry.Registry) *PoolOrphanDetector {
	return &PoolOrphanDetector{registry: reg}
}

// Name 返回检测器名称
func (d *PoolOrphanDetector) Name() string {
	return "pool_orphan"
}

// Kind 返回适用的资源类型
func (d *PoolOrphanDetector) Kind() types.ResourceKind {
	return types.KindPool
}

// Detect 对池句柄求值
func (d *PoolOrphanDetector) Detect(h guard.Handle) (*guard.Verdict, bool) {
	pool, ok := h.(guard.PoolHandle)
	if !ok {
		return nil, false
	}

	state := pool.PoolState()
	size := state.Size
	if size == 0 {
		size = state.CheckedOut + state.Idle
	}

	max := d.registry.Snapshot().Pools.MaxPoolSize
	if size <= max {
		return nil, false
	}

	return &guard.Verdict{
		Handle:   h,
		Detector: d.Name(),
		Pattern:  types.PatternPoolOrphan,
		Severity: types.SeverityWarning,
		Evidence: map[string]any{
			"size":        size,
			"checkedOut":  state.CheckedOut,
			"idle":        state.Idle,
			"maxPoolSize": max,
		},
	}, true
}
