package resguard

import (
	"fmt"
	"time"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置常量
// ════════════════════════════════════════════════════════════════════════════

// 预设名称常量
const (
	// PresetNameObserve 观察期预设名称
	PresetNameObserve = "observe"

	// PresetNameEnforce 全量处置预设名称
	PresetNameEnforce = "enforce"

	// PresetNameTest 测试预设名称
	PresetNameTest = "test"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置获取
// ════════════════════════════════════════════════════════════════════════════

// GetObserveConfig 获取观察期配置
//
// 适用场景：分阶段上线的第一阶段
// 特点：
//   - 全局 DryRun，只记录指标与溯源
//   - 不替换响应、不触发清理
//   - 阈值取保守默认值
//
// 示例：
//
//	cfg := resguard.GetObserveConfig()
func GetObserveConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Mode = types.ModeDryRun
	cfg.Connections.Mode = types.ModeFull
	cfg.Subscriptions.Mode = types.ModeFull
	cfg.Pools.Mode = types.ModeFull
	return cfg
}

// GetEnforceConfig 获取全量处置配置
//
// 适用场景：观察期确认误报可接受后的正式启用
// 特点：
//   - 全局与各组件均为 Full
//   - 命中即返回惰性响应并调度后台清理
//
// 示例：
//
//	cfg := resguard.GetEnforceConfig()
func GetEnforceConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Mode = types.ModeFull
	cfg.Connections.Mode = types.ModeFull
	cfg.Subscriptions.Mode = types.ModeFull
	cfg.Pools.Mode = types.ModeFull
	return cfg
}

// GetTestConfig 获取测试配置
//
// 适用场景：单元测试、本地联调
// 特点：
//   - 全量处置
//   - 毫秒级超时与退避，测试快速收敛
//   - 小容量队列与溯源缓存
//
// 示例：
//
//	cfg := resguard.GetTestConfig()
func GetTestConfig() *config.Config {
	cfg := GetEnforceConfig()
	cfg.Connections.AckTimeout = 100 * time.Millisecond
	cfg.Subscriptions.LeakThreshold = 10
	cfg.Subscriptions.OwnerTTL = time.Second
	cfg.Pools.MaxPoolSize = 8
	cfg.Sanitizer.Workers = 2
	cfg.Sanitizer.QueueSize = 16
	cfg.Sanitizer.Delay = time.Millisecond
	cfg.Sanitizer.BackoffBase = time.Millisecond
	cfg.Sanitizer.BackoffMax = 10 * time.Millisecond
	cfg.Sanitizer.CleanupTimeout = time.Second
	cfg.Sanitizer.DrainTimeout = 2 * time.Second
	cfg.Tracer.MaxRecords = 64
	return cfg
}

// GetConfigByPreset 根据预设名称获取配置
//
// 支持的预设名称：
//   - "observe" - 观察期配置
//   - "enforce" - 全量处置配置
//   - "test"    - 测试配置
//
// 名称未知时返回错误。
//
// 示例：
//
//	cfg, err := resguard.GetConfigByPreset("observe")
func GetConfigByPreset(name string) (*config.Config, error) {
	switch name {
	case PresetNameObserve:
		return GetObserveConfig(), nil
	case PresetNameEnforce:
		return GetEnforceConfig(), nil
	case PresetNameTest:
		return GetTestConfig(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
}

// GetDefaultConfig 获取默认配置
//
// 返回观察期配置作为默认值，处置能力需要显式开启。
// 等同于 GetObserveConfig()。
func GetDefaultConfig() *config.Config {
	return GetObserveConfig()
}

// ════════════════════════════════════════════════════════════════════════════
//                              预设应用
// ════════════════════════════════════════════════════════════════════════════

// ApplyPresetToConfig 将预设应用到现有配置
//
// 这会修改传入的配置，而不是创建新配置。
// 用于在已有配置基础上应用预设。
func ApplyPresetToConfig(cfg *config.Config, presetName string) error {
	preset, err := GetConfigByPreset(presetName)
	if err != nil {
		return err
	}
	*cfg = *preset.Clone()
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              预设列表
// ════════════════════════════════════════════════════════════════════════════

// PresetInfo 预设信息
type PresetInfo struct {
	// Name 预设名称
	Name string

	// Description 预设描述
	Description string

	// UseCase 适用场景
	UseCase string
}

// AvailablePresets 返回所有可用预设的信息
func AvailablePresets() []PresetInfo {
	return []PresetInfo{
		{
			Name:        PresetNameObserve,
			Description: "只检测不处置，记录指标与溯源",
			UseCase:     "分阶段上线的观察期、误报评估",
		},
		{
			Name:        PresetNameEnforce,
			Description: "全量处置，命中即替换响应并后台清理",
			UseCase:     "观察期结束后的正式启用",
		},
		{
			Name:        PresetNameTest,
			Description: "毫秒级时限的全量处置配置",
			UseCase:     "单元测试、本地联调",
		},
	}
}
