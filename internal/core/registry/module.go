// Package registry 实现防护配置的模式注册表模块
package registry

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-resguard/internal/config"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置
	Config *config.Config
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Registry 模式注册表
	Registry *Registry
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	reg, err := New(input.Config)
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{Registry: reg}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("registry",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "registry"
	// Description 模块描述
	Description = "防护配置注册表，提供无锁的有效模式解析与原子重载"
)
