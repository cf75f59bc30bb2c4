package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/detector"
	"github.com/dep2p/go-resguard/internal/core/profiler"
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/internal/core/sanitizer"
	"github.com/dep2p/go-resguard/internal/core/shaper"
	"github.com/dep2p/go-resguard/internal/core/tracer"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              Mock 实现
// ============================================================================

// mockConn 模拟连接句柄
type mockConn struct {
	id       string
	state    guard.ConnState
	cleanups int
}

func (m *mockConn) ID() string                      { return m.id }
func (m *mockConn) Kind() types.ResourceKind        { return types.KindConnection }
func (m *mockConn) Origin() string                  { return "test/origin" }
func (m *mockConn) Cleanup(_ context.Context) error { m.cleanups++; return nil }
func (m *mockConn) ConnState() guard.ConnState      { return m.state }

// panicDetector 检测时 panic 的检测器
type panicDetector struct{}

func (panicDetector) Name() string            { return "panic" }
func (panicDetector) Kind() types.ResourceKind { return types.KindConnection }
func (panicDetector) Detect(_ guard.Handle) (*guard.Verdict, bool) {
	panic("detector exploded")
}

// ============================================================================
//                              测试环境
// ============================================================================

type testEnv struct {
	interceptor *Interceptor
	registry    *registry.Registry
	sanitizer   *sanitizer.Sanitizer
	tracer      *tracer.Tracer
	clock       *clock.Mock
}

// newTestEnv 组装完整的拦截链路
//
// 检测链用真实组件，清理用真实时钟配毫秒级参数保证测试快速收敛。
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Connections.AckTimeout = 3 * time.Second
	cfg.Sanitizer.Workers = 2
	cfg.Sanitizer.Delay = time.Millisecond
	cfg.Sanitizer.BackoffBase = time.Millisecond
	cfg.Sanitizer.BackoffMax = 5 * time.Millisecond
	cfg.Sanitizer.CleanupTimeout = time.Second
	cfg.Sanitizer.DrainTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	reg, err := registry.New(cfg)
	require.NoError(t, err)

	prof, err := profiler.New(prometheus.NewRegistry())
	require.NoError(t, err)

	tr, err := tracer.New(cfg.Tracer, clock.New())
	require.NoError(t, err)

	mockClk := clock.NewMock()
	mockClk.Set(time.Unix(1700000000, 0))

	chain := detector.NewChain(
		detector.NewNoAckDetector(reg, mockClk),
		detector.NewSubLeakDetector(reg, nil),
		detector.NewPoolOrphanDetector(reg),
	)

	san := sanitizer.New(cfg.Sanitizer, clock.New(), prof)
	require.NoError(t, san.Start(context.Background()))
	t.Cleanup(func() { _ = san.Close() })

	i := New(reg, chain, shaper.New(mockClk), san, prof, tr, mockClk)

	return &testEnv{
		interceptor: i,
		registry:    reg,
		sanitizer:   san,
		tracer:      tr,
		clock:       mockClk,
	}
}

// staleConn 构造一个超时未确认的连接句柄
func (e *testEnv) staleConn(id string) *mockConn {
	return &mockConn{
		id: id,
		state: guard.ConnState{
			LastSend: e.clock.Now().Add(-4 * time.Second),
			Sent:     10,
			Acked:    0,
		},
	}
}

// healthyConn 构造一个确认正常的连接句柄
func (e *testEnv) healthyConn(id string) *mockConn {
	now := e.clock.Now()
	return &mockConn{
		id: id,
		state: guard.ConnState{
			LastSend: now.Add(-time.Second),
			LastAck:  now,
			Sent:     10,
			Acked:    10,
		},
	}
}

// passthroughHandler 记录调用并返回真实响应
type passthroughHandler struct {
	calls int
	resp  *guard.Response
}

func (p *passthroughHandler) handle(_ context.Context, op *guard.Operation) (*guard.Response, error) {
	p.calls++
	if p.resp == nil {
		p.resp = &guard.Response{
			Shape:   op.Shape,
			Payload: []byte("real"),
		}
		if op.Handle != nil {
			p.resp.HandleID = op.Handle.ID()
		}
	}
	return p.resp, nil
}

// ============================================================================
//                              处置决策测试
// ============================================================================

// TestPassthroughWhenHealthy 测试健康句柄原样放行
func TestPassthroughWhenHealthy(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
		c.Connections.Mode = types.ModeFull
	})

	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: env.healthyConn("conn-ok")},
		next.handle)

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, []byte("real"), resp.Payload)
	assert.Equal(t, 0, env.sanitizer.Active())
}

// TestPassthroughWhenDisabled 测试 Disabled 模式下即使命中也放行
func TestPassthroughWhenDisabled(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeDisabled
	})

	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: env.staleConn("conn-stale")},
		next.handle)

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, 0, env.sanitizer.Active())
}

// TestDryRunRecordsWithoutActing 测试 DryRun 只记录、不替换、不清理
func TestDryRunRecordsWithoutActing(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeDryRun
		c.Connections.Mode = types.ModeFull
	})

	conn := env.staleConn("conn-dry")
	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{ID: "op-dry", Shape: guard.ShapeAck, Handle: conn},
		next.handle)

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, 0, env.sanitizer.Active())
	assert.Equal(t, 0, conn.cleanups)

	// 命中被溯源记录
	rec, ok := env.tracer.Get("conn-dry")
	require.True(t, ok)
	assert.Equal(t, "op-dry", rec.OperationID)
	assert.Equal(t, types.PatternNoAck, rec.Pattern)
}

// TestFullModeShapesAndSchedules 测试 Full 模式返回惰性响应并调度清理
func TestFullModeShapesAndSchedules(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
		c.Connections.Mode = types.ModeFull
	})

	conn := env.staleConn("conn-full")
	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: conn},
		next.handle)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 0, next.calls, "被拦截的操作不应到达宿主处理器")
	assert.True(t, resp.Synthetic)
	assert.Nil(t, resp.Payload)
	assert.Equal(t, guard.ShapeAck, resp.Shape)
	assert.Equal(t, "conn-full", resp.HandleID)

	// 后台清理最终执行且只执行一次
	require.NoError(t, env.sanitizer.Drain(time.Second))
	assert.Equal(t, 1, conn.cleanups)
}

// TestEffectiveModeUsesComponentMinimum 测试组件模式不高于全局模式
func TestEffectiveModeUsesComponentMinimum(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
		c.Connections.Mode = types.ModeDetect
	})

	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: env.staleConn("conn-detect")},
		next.handle)

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, 0, env.sanitizer.Active())
}

// TestKillSwitchForcesPassthrough 测试紧急开关立即停用处置
func TestKillSwitchForcesPassthrough(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
		c.Connections.Mode = types.ModeFull
	})

	env.registry.SetKillSwitch(true)

	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: env.staleConn("conn-kill")},
		next.handle)

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.False(t, resp.Synthetic)
	assert.Equal(t, 0, env.sanitizer.Active())
}

// TestOperationIDAssignedOnHit 测试命中时为空操作 ID 补全
func TestOperationIDAssignedOnHit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeDetect
	})

	op := &guard.Operation{Shape: guard.ShapeAck, Handle: env.staleConn("conn-id")}
	next := &passthroughHandler{}
	_, err := env.interceptor.Intercept(context.Background(), op, next.handle)

	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)

	rec, ok := env.tracer.Get("conn-id")
	require.True(t, ok)
	assert.Equal(t, op.ID, rec.OperationID)
}

// TestNilHandlePassthrough 测试无句柄操作直接放行
func TestNilHandlePassthrough(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
	})

	next := &passthroughHandler{}
	op := &guard.Operation{Shape: guard.ShapeMessage}
	resp, err := env.interceptor.Intercept(context.Background(), op, next.handle)

	assert.Equal(t, 1, next.calls)
	_ = resp
	require.NoError(t, err)
}

// ============================================================================
//                              fail-open 测试
// ============================================================================

// TestDetectorPanicFailsOpen 测试内部异常不影响宿主操作
func TestDetectorPanicFailsOpen(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
		c.Connections.Mode = types.ModeFull
	})

	// 链中只留会 panic 的检测器，隔离由链负责，这里
	// 再叠加一层拦截器自身的 recover 兜底。
	env.interceptor.chain = detector.NewChain(panicDetector{})

	next := &passthroughHandler{}
	resp, err := env.interceptor.Intercept(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: env.staleConn("conn-panic")},
		next.handle)

	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.False(t, resp.Synthetic)
}

// ============================================================================
//                              中间件测试
// ============================================================================

// TestMiddlewareWrapsHandler 测试中间件形式等价于直接拦截
func TestMiddlewareWrapsHandler(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Mode = types.ModeFull
		c.Connections.Mode = types.ModeFull
	})

	next := &passthroughHandler{}
	wrapped := env.interceptor.Middleware()(next.handle)

	resp, err := wrapped(context.Background(),
		&guard.Operation{Shape: guard.ShapeAck, Handle: env.staleConn("conn-mw")})

	require.NoError(t, err)
	assert.Equal(t, 0, next.calls)
	assert.True(t, resp.Synthetic)
}
