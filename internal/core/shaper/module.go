// Package shaper 实现惰性响应构造模块
package shaper

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Clock 时钟（可选，默认真实时钟）
	Clock clock.Clock `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Shaper 惰性响应构造器
	Shaper guard.Shaper
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	return ModuleOutput{Shaper: New(input.Clock)}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("shaper",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "shaper"
	// Description 模块描述
	Description = "被拦截操作的惰性响应构造"
)
