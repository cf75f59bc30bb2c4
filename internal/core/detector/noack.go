package detector

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              NoAck - 无确认检测器
// ============================================================================

// NoAckDetector 无确认检测器
//
// 标记条件：连接最近一次发送距今超过 AckTimeout，
// 且该次发送之后没有收到任何确认。
// 从未发送过任何数据的连接永不标记。
type NoAckDetector struct {
	registry *registry.Registry
	clock    clock.Clock
}

var _ guard.Detector = (*NoAckDetector)(nil)

// NewNoAckDetector 创建无确认检测器
func NewNoAckDetector(reg *registry.Registry, clk clock.Clock) *NoAckDetector {
	if clk == nil {
		clk = clock.New()
	}
	return &NoAckDetector{registry: reg, clock: clk}
}

// Name 返回检测器名称
func (d *NoAckDetector) Name() string {
	return "no_ack"
}

// Kind 返回适用的资源类型
func (d *NoAckDetector) Kind() types.ResourceKind {
	return types.KindConnection
}

// Detect 对连接句柄求值
func (d *NoAckDetector) Detect(h guard.Handle) (*guard.Verdict, bool) {
	conn, ok := h.(guard.ConnectionHandle)
	if !ok {
		return nil, false
	}

	state := conn.ConnState()

	// 从未发送过的连接永不标记
	if state.LastSend.IsZero() {
		return nil, false
	}

	// 该次发送之后已收到确认
	if !state.LastAck.IsZero() && !state.LastAck.Before(state.LastSend) {
		return nil, false
	}

	timeout := d.registry.Snapshot().Connections.AckTimeout
	elapsed := d.clock.Now().Sub(state.LastSend)
	if elapsed <= timeout {
		return nil, false
	}

	return &guard.Verdict{
		Handle:   h,
		Detector: d.Name(),
		Pattern:  types.PatternNoAck,
		Severity: types.SeverityCritical,
		Evidence: map[string]any{
			"elapsed": elapsed.String(),
			"timeout": timeout.String(),
			"sent":    state.Sent,
			"acked":   state.Acked,
		},
	}, true
}
