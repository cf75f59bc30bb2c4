package resguard

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/detector"
	"github.com/dep2p/go-resguard/internal/core/interceptor"
	"github.com/dep2p/go-resguard/internal/core/profiler"
	"github.com/dep2p/go-resguard/internal/core/registry"
	"github.com/dep2p/go-resguard/internal/core/sanitizer"
	"github.com/dep2p/go-resguard/internal/core/shaper"
	"github.com/dep2p/go-resguard/internal/core/tracer"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
)

// buildFxApp 构建 Fx 应用
//
// 组装所有内部模块。加载顺序（按依赖）：
//  1. Registry（配置与模式解析）
//  2. Profiler / Tracer（观测）
//  3. Detector（检测链）→ Shaper（惰性响应）→ Sanitizer（后台清理）
//  4. Interceptor（处置决策，聚合上述全部）
func buildFxApp(cfg *config.Config, o *options, g *Guard) (*fx.App, error) {
	// 配置验证（前置）
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	registerer := o.registerer
	if registerer == nil {
		reg := prometheus.NewRegistry()
		registerer = reg
		g.gatherer = reg
	}

	modules := []fx.Option{
		// 配置与外部依赖注入
		fx.Supply(cfg),
		fx.Provide(func() prometheus.Registerer { return registerer }),

		// 核心模块
		registry.Module(),
		profiler.Module(),
		tracer.Module(),
		detector.Module(),
		shaper.Module(),
		sanitizer.Module(),
		interceptor.Module(),
	}

	// 测试时钟注入（可选）
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// 自定义属主存活策略（可选，覆盖默认心跳策略）
	if o.liveness != nil {
		l := o.liveness
		modules = append(modules, fx.Provide(func() guard.OwnerLiveness { return l }))
	}

	// 组件回填到门面
	modules = append(modules,
		fx.Populate(&g.populated),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}

// populatedComponents 由 Fx 回填到门面的组件集合
type populatedComponents struct {
	fx.In

	Registry    *registry.Registry
	Interceptor guard.Interceptor
	Sanitizer   *sanitizer.Sanitizer
	Tracer      *tracer.Tracer
	Profiler    *profiler.Profiler
	Liveness    guard.OwnerLiveness `name:"liveness"`
}
