// Package registry 提供防护配置的模式注册表
//
// 注册表持有一份不可变的配置快照，放在原子指针后面：
// - 读取无锁，满足请求路径的开销要求
// - 重载整体替换快照，读者永远不会看到半更新的配置
package registry

import (
	"sync/atomic"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("core/registry")

// Registry 模式注册表
type Registry struct {
	snap atomic.Pointer[config.Config]
}

// New 创建注册表
//
// 配置在此校验，非法配置在启动阶段直接失败。
func New(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	r := &Registry{}
	r.snap.Store(cfg.Clone())
	return r, nil
}

// Snapshot 返回当前配置快照
//
// 返回的指针指向不可变快照，调用方不得修改。
// 一次求值应只读取一次快照，保证看到的配置一致。
func (r *Registry) Snapshot() *config.Config {
	return r.snap.Load()
}

// EffectiveMode 计算组件的有效模式
//
// 规则：KillSwitch 置位 → Disabled；
// 否则取全局模式与组件模式中限制较强的一方。
func (r *Registry) EffectiveMode(kind types.ResourceKind) types.Mode {
	cfg := r.snap.Load()
	if cfg.KillSwitch {
		return types.ModeDisabled
	}
	return cfg.Mode.Min(cfg.ComponentMode(kind))
}

// Reload 整体替换配置快照
//
// 新配置先校验后替换；新模式对后续操作立即生效，
// 已经开始的清理任务不受影响（清理一旦启动就跑到终态）。
func (r *Registry) Reload(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		logger.Warn("配置重载被拒绝", "error", err)
		return err
	}

	r.snap.Store(cfg.Clone())
	logger.Info("配置已重载",
		"mode", cfg.Mode.String(),
		"killSwitch", cfg.KillSwitch)
	return nil
}

// SetKillSwitch 切换总开关
//
// 以克隆-替换方式更新，保持快照不可变的约定。
func (r *Registry) SetKillSwitch(on bool) {
	cur := r.snap.Load()
	next := cur.Clone()
	next.KillSwitch = on
	r.snap.Store(next)

	if on {
		logger.Warn("总开关已置位，所有组件强制 disabled")
	} else {
		logger.Info("总开关已解除")
	}
}
