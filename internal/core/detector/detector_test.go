package detector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              Mock 实现
// ============================================================================

// mockConn 模拟连接句柄
type mockConn struct {
	id    string
	state guard.ConnState
}

func (m *mockConn) ID() string                      { return m.id }
func (m *mockConn) Kind() types.ResourceKind        { return types.KindConnection }
func (m *mockConn) Origin() string                  { return "test" }
func (m *mockConn) Cleanup(_ context.Context) error { return nil }
func (m *mockConn) ConnState() guard.ConnState      { return m.state }

// mockSub 模拟订阅作用域句柄
type mockSub struct {
	id    string
	state guard.SubState
}

func (m *mockSub) ID() string                      { return m.id }
func (m *mockSub) Kind() types.ResourceKind        { return types.KindSubscription }
func (m *mockSub) Origin() string                  { return "test" }
func (m *mockSub) Cleanup(_ context.Context) error { return nil }
func (m *mockSub) SubState() guard.SubState        { return m.state }

// mockPool 模拟池句柄
type mockPool struct {
	id    string
	state guard.PoolState
}

func (m *mockPool) ID() string                      { return m.id }
func (m *mockPool) Kind() types.ResourceKind        { return types.KindPool }
func (m *mockPool) Origin() string                  { return "test" }
func (m *mockPool) Cleanup(_ context.Context) error { return nil }
func (m *mockPool) PoolState() guard.PoolState      { return m.state }

func newTestRegistry(t *testing.T, mutate func(*config.Config)) *registry.Registry {
	t.Helper()
	cfg := config.NewConfig()
	if mutate != nil {
		mutate(cfg)
	}
	reg, err := registry.New(cfg)
	require.NoError(t, err)
	return reg
}

// ============================================================================
//                              NoAck 检测器
// ============================================================================

// TestNoAckScenario 发送 3.001s 未确认即以 Critical 标记
//
// ack_timeout=3s；连接在 t=0 发送且无确认，t=3.001s 必须命中。
func TestNoAckScenario(t *testing.T) {
	clk := clock.NewMock()
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Connections.AckTimeout = 3 * time.Second
	})
	d := NewNoAckDetector(reg, clk)

	h := &mockConn{id: "conn-1", state: guard.ConnState{
		LastSend: clk.Now(),
		Sent:     1,
	}}

	// 恰好在阈值上：不命中
	clk.Add(3 * time.Second)
	_, ok := d.Detect(h)
	assert.False(t, ok)

	// 超过阈值 1ms：命中且为 Critical
	clk.Add(time.Millisecond)
	v, ok := d.Detect(h)
	require.True(t, ok)
	assert.Equal(t, types.PatternNoAck, v.Pattern)
	assert.Equal(t, types.SeverityCritical, v.Severity)
	assert.Equal(t, "no_ack", v.Detector)
}

// TestNoAckNeverSent 从未发送过的连接永不标记
func TestNoAckNeverSent(t *testing.T) {
	clk := clock.NewMock()
	reg := newTestRegistry(t, nil)
	d := NewNoAckDetector(reg, clk)

	h := &mockConn{id: "conn-idle"}

	clk.Add(24 * time.Hour)
	_, ok := d.Detect(h)
	assert.False(t, ok)
}

// TestNoAckClearedByAck 确认到达后结论消失
func TestNoAckClearedByAck(t *testing.T) {
	clk := clock.NewMock()
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Connections.AckTimeout = 3 * time.Second
	})
	d := NewNoAckDetector(reg, clk)

	sendAt := clk.Now()
	h := &mockConn{id: "conn-1", state: guard.ConnState{LastSend: sendAt, Sent: 1}}

	clk.Add(4 * time.Second)
	_, ok := d.Detect(h)
	require.True(t, ok)

	// 模拟确认到达：下一次求值不再命中
	h.state.LastAck = clk.Now()
	h.state.Acked = 1
	_, ok = d.Detect(h)
	assert.False(t, ok)
}

// TestNoAckStaleAck 发送晚于上次确认时仍然命中
func TestNoAckStaleAck(t *testing.T) {
	clk := clock.NewMock()
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Connections.AckTimeout = 3 * time.Second
	})
	d := NewNoAckDetector(reg, clk)

	ackAt := clk.Now()
	clk.Add(time.Second)
	h := &mockConn{id: "conn-1", state: guard.ConnState{
		LastSend: clk.Now(),
		LastAck:  ackAt, // 确认早于本次发送
		Sent:     2,
		Acked:    1,
	}}

	clk.Add(4 * time.Second)
	_, ok := d.Detect(h)
	assert.True(t, ok)
}

// ============================================================================
//                              SubLeak 检测器
// ============================================================================

func subsN(n int, owner string) []guard.Subscriber {
	subs := make([]guard.Subscriber, n)
	for i := range subs {
		subs[i] = guard.Subscriber{ID: fmt.Sprintf("sub-%d", i), Owner: owner}
	}
	return subs
}

// TestSubLeakScenario leak_threshold=1000：999 不命中、1000 命中
func TestSubLeakScenario(t *testing.T) {
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Subscriptions.LeakThreshold = 1000
	})
	d := NewSubLeakDetector(reg, nil)

	h := &mockSub{id: "scope-1", state: guard.SubState{Subscribers: subsN(999, "owner-a")}}
	_, ok := d.Detect(h)
	assert.False(t, ok)

	h.state.Subscribers = subsN(1000, "owner-a")
	v, ok := d.Detect(h)
	require.True(t, ok)
	assert.Equal(t, types.PatternSubscriptionLeak, v.Pattern)
	assert.Equal(t, types.SeverityWarning, v.Severity)
	assert.Equal(t, 1000, v.Evidence["live"])
}

// TestSubLeakDeadOwnersExcluded 属主不可达的订阅不计入存活数
func TestSubLeakDeadOwnersExcluded(t *testing.T) {
	clk := clock.NewMock()
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Subscriptions.LeakThreshold = 10
	})
	liveness := NewHeartbeatLiveness(time.Minute, clk)
	d := NewSubLeakDetector(reg, liveness)

	// 8 个存活属主的订阅 + 5 个死属主的订阅，总量超阈但存活数未超
	subs := subsN(8, "alive-owner")
	subs = append(subs, subsN(5, "dead-owner")...)
	liveness.Touch("alive-owner")
	liveness.Forget("dead-owner")

	h := &mockSub{id: "scope-1", state: guard.SubState{Subscribers: subs}}
	_, ok := d.Detect(h)
	assert.False(t, ok)

	// 存活订阅补齐到阈值：命中
	h.state.Subscribers = append(h.state.Subscribers, subsN(2, "alive-owner")...)
	v, ok := d.Detect(h)
	require.True(t, ok)
	assert.Equal(t, 10, v.Evidence["live"])
	assert.Equal(t, 15, v.Evidence["total"])
}

// TestSubLeakCriticalEscalation 超阈值一倍以上升级为 Critical
func TestSubLeakCriticalEscalation(t *testing.T) {
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Subscriptions.LeakThreshold = 10
	})
	d := NewSubLeakDetector(reg, nil)

	h := &mockSub{id: "scope-1", state: guard.SubState{Subscribers: subsN(20, "o")}}
	v, ok := d.Detect(h)
	require.True(t, ok)
	assert.Equal(t, types.SeverityCritical, v.Severity)
}

// ============================================================================
//                              PoolOrphan 检测器
// ============================================================================

// TestPoolOrphanScenario max_pool_size=30：checked_out=31 命中
func TestPoolOrphanScenario(t *testing.T) {
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Pools.MaxPoolSize = 30
	})
	d := NewPoolOrphanDetector(reg)

	h := &mockPool{id: "pool-1", state: guard.PoolState{Size: 31, CheckedOut: 31}}
	v, ok := d.Detect(h)
	require.True(t, ok)
	assert.Equal(t, types.PatternPoolOrphan, v.Pattern)
	assert.Equal(t, 31, v.Evidence["size"])

	// 恰好在上限：不命中
	h.state = guard.PoolState{Size: 30, CheckedOut: 25, Idle: 5}
	_, ok = d.Detect(h)
	assert.False(t, ok)
}

// TestPoolOrphanDerivedSize Size 缺省时按 checked_out + idle 推导
func TestPoolOrphanDerivedSize(t *testing.T) {
	reg := newTestRegistry(t, func(c *config.Config) {
		c.Pools.MaxPoolSize = 10
	})
	d := NewPoolOrphanDetector(reg)

	h := &mockPool{id: "pool-1", state: guard.PoolState{CheckedOut: 8, Idle: 4}}
	v, ok := d.Detect(h)
	require.True(t, ok)
	assert.Equal(t, 12, v.Evidence["size"])
}

// ============================================================================
//                              HeartbeatLiveness
// ============================================================================

// TestHeartbeatLiveness 心跳窗口内存活、过期死亡、未知存活
func TestHeartbeatLiveness(t *testing.T) {
	clk := clock.NewMock()
	l := NewHeartbeatLiveness(time.Minute, clk)

	// 从未见过的属主视为存活
	assert.True(t, l.Alive("unknown"))

	l.Touch("a")
	assert.True(t, l.Alive("a"))

	clk.Add(59 * time.Second)
	assert.True(t, l.Alive("a"))

	clk.Add(2 * time.Second)
	assert.False(t, l.Alive("a"))

	// 再次心跳后复活
	l.Touch("a")
	assert.True(t, l.Alive("a"))

	// 显式销毁立即死亡
	l.Forget("a")
	assert.False(t, l.Alive("a"))
}
