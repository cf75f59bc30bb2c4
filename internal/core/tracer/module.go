// Package tracer 实现溯源记录模块
package tracer

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-resguard/internal/config"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置
	Config *config.Config

	// Clock 时钟（可选，默认真实时钟）
	Clock clock.Clock `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Tracer 溯源记录器
	Tracer *Tracer
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	tr, err := New(input.Config.Tracer, input.Clock)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Tracer: tr}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("tracer",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "tracer"
	// Description 模块描述
	Description = "被标记资源的有界溯源记录"
)
