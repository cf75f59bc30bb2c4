// Package detector 实现寄生模式检测模块
package detector

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/internal/core/registry"
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

	// Registry 模式注册表
	Registry *registry.Registry

	// Clock 时钟（可选，默认真实时钟）
	Clock clock.Clock `optional:"true"`

	// Liveness 属主存活策略（可选，默认心跳策略）
	Liveness guard.OwnerLiveness `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Chain 检测链
	Chain guard.Chain

	// Liveness 实际装配的属主存活策略
	Liveness guard.OwnerLiveness `name:"liveness"`
}

// ProvideServices 提供模块服务
//
// 参考检测器按固定顺序注册：no_ack → subscription_leak → pool_orphan。
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	clk := input.Clock
	if clk == nil {
		clk = clock.New()
	}

	liveness := input.Liveness
	if liveness == nil {
		liveness = NewHeartbeatLiveness(input.Config.Subscriptions.OwnerTTL, clk)
	}

	chain := NewChain(
		NewNoAckDetector(input.Registry, clk),
		NewSubLeakDetector(input.Registry, liveness),
		NewPoolOrphanDetector(input.Registry),
	)

	return ModuleOutput{
		Chain:    chain,
		Liveness: liveness,
	}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("detector",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Name 模块名称
	Name = "detector"
	// Description 模块描述
	Description = "寄生模式检测器与检测链"
)
