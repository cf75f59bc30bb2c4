package interceptor

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-resguard/internal/core/profiler"
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/internal/core/tracer"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Registry 配置与模式注册表
	Registry *registry.Registry

	// Chain 检测器链
	Chain guard.Chain

	// Shaper 惰性响应构造器
	Shaper guard.Shaper

	// Sanitizer 延迟清理调度器
	Sanitizer guard.Sanitizer

	// Profiler 指标采集器
	Profiler *profiler.Profiler

	// Tracer 诊断溯源器
	Tracer *tracer.Tracer

	// Clock 时钟（可选，默认真实时钟）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Interceptor 操作拦截器
	Interceptor guard.Interceptor
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	i := New(
		input.Registry,
		input.Chain,
		input.Shaper,
		input.Sanitizer,
		input.Profiler,
		input.Tracer,
		input.Clock,
	)
	return ModuleOutput{Interceptor: i}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("interceptor",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "interceptor"
	// Description 模块描述
	Description = "操作入口拦截与处置决策"
)
