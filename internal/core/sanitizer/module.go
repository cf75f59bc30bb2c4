// Package sanitizer 实现延迟清理模块
package sanitizer

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/profiler"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置
	Config *config.Config

	// Profiler 指标采集器
	Profiler *profiler.Profiler

	// Clock 时钟（可选，默认真实时钟）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Sanitizer 延迟清理调度器
	Sanitizer guard.Sanitizer

	// Impl 具体实现（供生命周期钩子使用）
	Impl *Sanitizer
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	s := New(input.Config.Sanitizer, input.Clock, input.Profiler)
	return ModuleOutput{
		Sanitizer: s,
		Impl:      s,
	}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("sanitizer",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC        fx.Lifecycle
	Config    *config.Config
	Sanitizer *Sanitizer
}

// registerLifecycle 注册生命周期
//
// 关闭顺序：先在 DrainTimeout 预算内等待在途任务，再关闭工作池。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Sanitizer.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			if err := input.Sanitizer.Drain(input.Config.Sanitizer.DrainTimeout); err != nil {
				logger.Warn("关闭前 drain 未能清空在途任务", "error", err)
			}
			return input.Sanitizer.Close()
		},
	})
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "sanitizer"
	// Description 模块描述
	Description = "有界并发的延迟后台清理调度器"
)
