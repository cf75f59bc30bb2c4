package resguard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/tracer"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("resguard")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "ResGuard " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ════════════════════════════════════════════════════════════════════════════
//                              引擎状态
// ════════════════════════════════════════════════════════════════════════════

// GuardState 引擎状态
//
// 表示引擎在生命周期中的当前阶段。
type GuardState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle GuardState = iota

	// StateStarting 启动中（Fx App 启动中）
	StateStarting

	// StateRunning 运行中（正常工作状态）
	StateRunning

	// StateStopping 停止中（等待在途清理）
	StateStopping

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s GuardState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// 生命周期超时配置
const (
	// startTimeout 启动超时（Fx App Start）
	startTimeout = 30 * time.Second

	// stopTimeout 停止超时（Fx App Stop，需覆盖 DrainTimeout）
	stopTimeout = 60 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Guard - 防护引擎门面
// ════════════════════════════════════════════════════════════════════════════

// Guard 资源防护引擎
//
// Guard 是宿主服务与防护引擎交互的主入口。
// 它是一个门面（Facade），聚合了所有内部组件。
//
// 架构层次：
//   - API Layer: Guard（本层，宿主直接交互）
//   - Decision Layer: Interceptor（处置决策）
//   - Detection Layer: Detector Chain, Owner Liveness
//   - Action Layer: Shaper（惰性响应）, Sanitizer（后台清理）
//   - Observation Layer: Profiler, Tracer, Registry
//
// 使用示例：
//
//	// 创建并启动引擎
//	g, err := resguard.New(
//	    resguard.WithPreset(resguard.PresetNameObserve),
//	    resguard.WithConnectionGuard(types.ModeFull, 30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := g.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	// 挂载到宿主操作管线
//	g.Attach(host)
//
//	// 或手动拦截单次操作
//	resp, err := g.Intercept(ctx, op, handler)
type Guard struct {
	// config 启动时的内部配置
	config *config.Config

	// opts 构造选项（Reload 时复用）
	opts *options

	// app Fx 应用
	app *fx.App

	// populated 由 Fx 注入的内部组件
	populated populatedComponents

	// gatherer 私有指标 Registry（未注入外部 Registerer 时持有）
	gatherer prometheus.Gatherer

	// 生命周期状态
	mu      sync.RWMutex
	state   GuardState
	started bool
	closed  bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建防护引擎
//
// 创建引擎但不启动，需要调用 Start() 启动清理工作池。
// 通过 Option 函数配置引擎。
//
// 示例：
//
//	g, err := resguard.New(
//	    resguard.WithMode(types.ModeDryRun),
//	    resguard.WithSubscriptionGuard(types.ModeFull, 1000),
//	)
func New(opts ...Option) (*Guard, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.toInternalConfig()
	if err != nil {
		return nil, err
	}

	g := &Guard{
		config: cfg,
		opts:   o,
		state:  StateIdle,
	}

	app, err := buildFxApp(cfg, o, g)
	if err != nil {
		return nil, err
	}
	g.app = app

	return g, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动引擎
//
// 启动清理工作池并完成组件装配。重复调用返回 ErrAlreadyStarted。
func (g *Guard) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	if g.started {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.state = StateStarting
	g.mu.Unlock()

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := g.app.Start(startCtx); err != nil {
		g.mu.Lock()
		g.state = StateIdle
		g.mu.Unlock()
		return fmt.Errorf("start guard: %w", err)
	}

	g.mu.Lock()
	g.started = true
	g.state = StateRunning
	g.mu.Unlock()

	logger.Info("防护引擎已启动",
		"version", Version,
		"mode", g.config.Mode.String())
	return nil
}

// Close 关闭引擎
//
// 在 DrainTimeout 预算内等待在途清理任务，随后关闭工作池。
// 幂等，重复调用返回 nil。
func (g *Guard) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	started := g.started
	g.state = StateStopping
	g.mu.Unlock()

	var err error
	if started {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		err = multierr.Append(err, g.app.Stop(stopCtx))
	}

	g.mu.Lock()
	g.state = StateStopped
	g.mu.Unlock()

	logger.Info("防护引擎已关闭")
	return err
}

// State 返回引擎当前状态
func (g *Guard) State() GuardState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// ════════════════════════════════════════════════════════════════════════════
//                              拦截与挂载
// ════════════════════════════════════════════════════════════════════════════

// Intercept 拦截一次操作
//
// 未启动或已关闭时直接放行，引擎绝不成为宿主的故障点。
func (g *Guard) Intercept(ctx context.Context, op *guard.Operation, next guard.Handler) (*guard.Response, error) {
	if !g.running() {
		return next(ctx, op)
	}
	return g.populated.Interceptor.Intercept(ctx, op, next)
}

// Middleware 以中间件形式返回拦截逻辑
func (g *Guard) Middleware() guard.Middleware {
	return func(next guard.Handler) guard.Handler {
		return func(ctx context.Context, op *guard.Operation) (*guard.Response, error) {
			return g.Intercept(ctx, op, next)
		}
	}
}

// Attach 挂载到宿主操作管线
//
//	g.Attach(host) // 之后宿主的每次操作都会经过检测
func (g *Guard) Attach(host guard.Host) error {
	if host == nil {
		return ErrNilHost
	}
	host.Use(g.Middleware())
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              运行时控制
// ════════════════════════════════════════════════════════════════════════════

// Reload 整体重载配置
//
// 新配置先验证后原子替换，在途的检测继续使用旧快照完成。
// 传入的用户配置叠加在当前启动配置之上。
func (g *Guard) Reload(uc *UserConfig) error {
	if uc == nil {
		return ErrNilConfig
	}
	if !g.running() {
		return ErrNotStarted
	}

	cfg := g.populated.Registry.Snapshot().Clone()
	if err := uc.applyTo(cfg); err != nil {
		return err
	}
	return g.populated.Registry.Reload(cfg)
}

// SetMode 调整全局防护模式
func (g *Guard) SetMode(mode types.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("无效的防护模式: %d", int(mode))
	}
	if !g.running() {
		return ErrNotStarted
	}

	cfg := g.populated.Registry.Snapshot().Clone()
	cfg.Mode = mode
	return g.populated.Registry.Reload(cfg)
}

// SetKillSwitch 设置紧急开关
//
// 开启后所有组件立即停用检测与处置，无需重启。
func (g *Guard) SetKillSwitch(on bool) error {
	if !g.running() {
		return ErrNotStarted
	}
	g.populated.Registry.SetKillSwitch(on)
	logger.Warn("紧急开关状态变更", "on", on)
	return nil
}

// Drain 等待在途清理任务完成或超时
func (g *Guard) Drain(timeout time.Duration) error {
	if !g.running() {
		return ErrNotStarted
	}
	return g.populated.Sanitizer.Drain(timeout)
}

// ════════════════════════════════════════════════════════════════════════════
//                              观测与诊断
// ════════════════════════════════════════════════════════════════════════════

// EffectiveMode 返回资源类型的当前有效模式
func (g *Guard) EffectiveMode(kind types.ResourceKind) types.Mode {
	if !g.running() {
		return types.ModeDisabled
	}
	return g.populated.Registry.EffectiveMode(kind)
}

// Trace 查询句柄的最近一次标记溯源
func (g *Guard) Trace(handleID string) (tracer.Record, bool) {
	if !g.running() {
		return tracer.Record{}, false
	}
	return g.populated.Tracer.Get(handleID)
}

// ActiveSanitizations 返回当前非终态的清理任务数
func (g *Guard) ActiveSanitizations() int {
	if !g.running() {
		return 0
	}
	return g.populated.Sanitizer.Active()
}

// Gatherer 返回引擎私有的指标采集端点
//
// 通过 WithPrometheusRegisterer 注入外部注册器时返回 nil，
// 此时指标由宿主自己的端点曝光。
func (g *Guard) Gatherer() prometheus.Gatherer {
	return g.gatherer
}

// TouchOwner 上报订阅属主的心跳
//
// 仅在使用默认心跳存活策略时有效，自定义策略下为空操作。
func (g *Guard) TouchOwner(owner string) {
	if !g.running() {
		return
	}
	if hb, ok := g.populated.Liveness.(interface{ Touch(string) }); ok {
		hb.Touch(owner)
	}
}

// ForgetOwner 将订阅属主标记为已离线
func (g *Guard) ForgetOwner(owner string) {
	if !g.running() {
		return
	}
	if hb, ok := g.populated.Liveness.(interface{ Forget(string) }); ok {
		hb.Forget(owner)
	}
}

// running 检查引擎是否处于可工作状态
func (g *Guard) running() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.started && !g.closed
}
