// Package profiler 实现指标采集模块
package profiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Registerer 指标注册器（由外层注入，便于测试隔离）
	Registerer prometheus.Registerer
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Profiler 指标采集器
	Profiler *Profiler
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	p, err := New(input.Registerer)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Profiler: p}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("profiler",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "profiler"
	// Description 模块描述
	Description = "检测与清理事件的 prometheus 指标采集"
)
