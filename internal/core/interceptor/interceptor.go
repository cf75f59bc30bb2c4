// Package interceptor 实现每操作入口的拦截器
//
// 状态机：EVALUATING → {PASSTHROUGH, FLAGGED_DRY, FLAGGED_ACTIVE}；
// FLAGGED_ACTIVE 额外在后台触发 SANITIZING，不阻塞操作自身完成。
//
// 拦截器运行在宿主正常的操作处理上下文中：检测与响应替换必须
// 同步且快速地完成。传播策略是 fail-open：拦截器内部的任何错误
// 都不会进入宿主的操作路径，最坏结果是如同未发生检测一样放行。
package interceptor

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-resguard/internal/core/profiler"
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/internal/core/tracer"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("core/interceptor")

// Interceptor 每操作入口的拦截器
type Interceptor struct {
	registry  *registry.Registry
	chain     guard.Chain
	shaper    guard.Shaper
	sanitizer guard.Sanitizer
	prof      *profiler.Profiler
	tracer    *tracer.Tracer
	clock     clock.Clock
}

var _ guard.Interceptor = (*Interceptor)(nil)

// New 创建拦截器
//
// 所有协作方显式注入，保证单元测试的隔离与确定性。
func New(
	reg *registry.Registry,
	chain guard.Chain,
	shaper guard.Shaper,
	sanitizer guard.Sanitizer,
	prof *profiler.Profiler,
	tr *tracer.Tracer,
	clk clock.Clock,
) *Interceptor {
	if clk == nil {
		clk = clock.New()
	}
	return &Interceptor{
		registry:  reg,
		chain:     chain,
		shaper:    shaper,
		sanitizer: sanitizer,
		prof:      prof,
		tracer:    tr,
		clock:     clk,
	}
}

// Intercept 拦截一次操作
//
// 处置规则（§ 状态机）：
//  1. 对操作涉及的句柄运行检测链
//  2. 无结论，或组件有效模式为 Disabled → 原样放行
//  3. 有结论且有效模式为 DryRun/Detect → 记录后放行（分阶段验证）
//  4. 有结论且有效模式为 Full → 立即返回惰性响应并调度后台清理
func (i *Interceptor) Intercept(ctx context.Context, op *guard.Operation, next guard.Handler) (*guard.Response, error) {
	if op == nil || op.Handle == nil {
		return next(ctx, op)
	}

	verdict, mode := i.evaluate(op)

	// 无结论：原样放行
	if verdict == nil {
		return next(ctx, op)
	}

	// DryRun/Detect：已记录，放行不替换、不清理
	if mode < types.ModeFull {
		return next(ctx, op)
	}

	// Full：惰性响应立即返回，真实清理移出关键路径
	resp := i.shaper.Shape(op.Handle, op.Shape)
	task := i.sanitizer.Schedule(op.Handle)

	logger.Info("操作已拦截",
		"operationID", op.ID,
		"handleID", log.TruncateID(op.Handle.ID(), 16),
		"pattern", string(verdict.Pattern),
		"taskStatus", task.Status().String())

	return resp, nil
}

// evaluate 运行检测链并记录结果
//
// 检测、指标与溯源中的任何 panic 都被吞掉并按未命中处理，
// 绝不传入宿主（fail-open）。返回结论与组件的有效模式。
func (i *Interceptor) evaluate(op *guard.Operation) (verdict *guard.Verdict, mode types.Mode) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("拦截器内部异常，按放行处理",
				"operationID", op.ID,
				"panic", r)
			verdict, mode = nil, types.ModeDisabled
		}
	}()

	kind := op.Handle.Kind()
	mode = i.registry.EffectiveMode(kind)

	// Disabled（含紧急开关）连检测本身都不做
	if mode == types.ModeDisabled {
		return nil, mode
	}

	start := i.clock.Now()
	v, ok := i.chain.Evaluate(op.Handle)
	i.prof.ObserveDetection(kind.Component(), i.clock.Now().Sub(start))

	if !ok {
		return nil, mode
	}

	// 无论模式如何，命中一律记指标和溯源
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	i.prof.MarkDetected(kind.Component(), v.Pattern, v.Severity)
	i.tracer.Capture(op.ID, v)

	logger.Warn("检测到寄生模式",
		"operationID", op.ID,
		"handleID", log.TruncateID(op.Handle.ID(), 16),
		"detector", v.Detector,
		"pattern", string(v.Pattern),
		"severity", v.Severity.String(),
		"mode", mode.String(),
		"evidence", v.Evidence)

	return v, mode
}

// Middleware 以中间件形式返回拦截逻辑
//
// 宿主通过 Host.Use 挂载，无需改动自身路由。
func (i *Interceptor) Middleware() guard.Middleware {
	return func(next guard.Handler) guard.Handler {
		return func(ctx context.Context, op *guard.Operation) (*guard.Response, error) {
			return i.Intercept(ctx, op, next)
		}
	}
}
