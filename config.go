package resguard

import (
	"time"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/pkg/types"
)

// UserConfig 用户配置结构
//
// 这是面向用户的简化配置结构，可以从 JSON 文件加载。
// 内部会转换为详细的组件配置。
//
// 注意：配置文件的读取和环境变量的处理应由应用层（cmd/*）负责，
// 库本身不负责 I/O 操作。示例用法：
//
//	data, _ := os.ReadFile("resguard.json")
//	var cfg resguard.UserConfig
//	json.Unmarshal(data, &cfg)
//	g, _ := resguard.New(resguard.WithUserConfig(&cfg))
type UserConfig struct {
	// Preset 预设名称
	// 可选值: observe, enforce, test
	// 预设之后的配置项可以覆盖预设中的值
	Preset string `json:"preset,omitempty"`

	// Mode 全局防护模式
	// 可选值: disabled, dry_run, detect, full
	Mode string `json:"mode,omitempty"`

	// Connections 连接防护配置
	Connections *ConnectionUserConfig `json:"connections,omitempty"`

	// Subscriptions 订阅防护配置
	Subscriptions *SubscriptionUserConfig `json:"subscriptions,omitempty"`

	// Pools 资源池防护配置
	Pools *PoolUserConfig `json:"pools,omitempty"`

	// Sanitizer 延迟清理配置
	Sanitizer *SanitizerUserConfig `json:"sanitizer,omitempty"`

	// Tracer 溯源配置
	Tracer *TracerUserConfig `json:"tracer,omitempty"`
}

// ConnectionUserConfig 连接防护配置
type ConnectionUserConfig struct {
	// Mode 组件模式
	Mode string `json:"mode,omitempty"`

	// AckTimeoutSeconds 无确认超时（秒）
	AckTimeoutSeconds int `json:"ack_timeout_seconds,omitempty"`
}

// SubscriptionUserConfig 订阅防护配置
type SubscriptionUserConfig struct {
	// Mode 组件模式
	Mode string `json:"mode,omitempty"`

	// LeakThreshold 存活订阅数阈值
	LeakThreshold int `json:"leak_threshold,omitempty"`

	// OwnerTTLSeconds 属主心跳存活窗口（秒）
	OwnerTTLSeconds int `json:"owner_ttl_seconds,omitempty"`
}

// PoolUserConfig 资源池防护配置
type PoolUserConfig struct {
	// Mode 组件模式
	Mode string `json:"mode,omitempty"`

	// MaxPoolSize 池大小上限
	MaxPoolSize int `json:"max_pool_size,omitempty"`
}

// SanitizerUserConfig 延迟清理配置
type SanitizerUserConfig struct {
	// Workers 工作池并发度
	Workers int `json:"workers,omitempty"`

	// QueueSize 任务队列容量
	QueueSize int `json:"queue_size,omitempty"`

	// DelayMillis 清理前的沉降延迟（毫秒）
	DelayMillis int `json:"delay_millis,omitempty"`

	// MaxRetries 失败清理的最大重试次数
	MaxRetries int `json:"max_retries,omitempty"`

	// DrainTimeoutSeconds 关闭等待预算（秒）
	DrainTimeoutSeconds int `json:"drain_timeout_seconds,omitempty"`
}

// TracerUserConfig 溯源配置
type TracerUserConfig struct {
	// MaxRecords 溯源记录上限
	MaxRecords int `json:"max_records,omitempty"`
}

// applyTo 将用户配置叠加到内部配置
//
// 零值字段视为未设置，不覆盖已有值。
func (uc *UserConfig) applyTo(cfg *config.Config) error {
	if uc.Preset != "" {
		if err := ApplyPresetToConfig(cfg, uc.Preset); err != nil {
			return err
		}
	}

	if uc.Mode != "" {
		mode, err := types.ParseMode(uc.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = mode
	}

	if uc.Connections != nil {
		if uc.Connections.Mode != "" {
			mode, err := types.ParseMode(uc.Connections.Mode)
			if err != nil {
				return err
			}
			cfg.Connections.Mode = mode
		}
		if uc.Connections.AckTimeoutSeconds > 0 {
			cfg.Connections.AckTimeout = time.Duration(uc.Connections.AckTimeoutSeconds) * time.Second
		}
	}

	if uc.Subscriptions != nil {
		if uc.Subscriptions.Mode != "" {
			mode, err := types.ParseMode(uc.Subscriptions.Mode)
			if err != nil {
				return err
			}
			cfg.Subscriptions.Mode = mode
		}
		if uc.Subscriptions.LeakThreshold > 0 {
			cfg.Subscriptions.LeakThreshold = uc.Subscriptions.LeakThreshold
		}
		if uc.Subscriptions.OwnerTTLSeconds > 0 {
			cfg.Subscriptions.OwnerTTL = time.Duration(uc.Subscriptions.OwnerTTLSeconds) * time.Second
		}
	}

	if uc.Pools != nil {
		if uc.Pools.Mode != "" {
			mode, err := types.ParseMode(uc.Pools.Mode)
			if err != nil {
				return err
			}
			cfg.Pools.Mode = mode
		}
		if uc.Pools.MaxPoolSize > 0 {
			cfg.Pools.MaxPoolSize = uc.Pools.MaxPoolSize
		}
	}

	if uc.Sanitizer != nil {
		if uc.Sanitizer.Workers > 0 {
			cfg.Sanitizer.Workers = uc.Sanitizer.Workers
		}
		if uc.Sanitizer.QueueSize > 0 {
			cfg.Sanitizer.QueueSize = uc.Sanitizer.QueueSize
		}
		if uc.Sanitizer.DelayMillis > 0 {
			cfg.Sanitizer.Delay = time.Duration(uc.Sanitizer.DelayMillis) * time.Millisecond
		}
		if uc.Sanitizer.MaxRetries > 0 {
			cfg.Sanitizer.MaxRetries = uc.Sanitizer.MaxRetries
		}
		if uc.Sanitizer.DrainTimeoutSeconds > 0 {
			cfg.Sanitizer.DrainTimeout = time.Duration(uc.Sanitizer.DrainTimeoutSeconds) * time.Second
		}
	}

	if uc.Tracer != nil {
		if uc.Tracer.MaxRecords > 0 {
			cfg.Tracer.MaxRecords = uc.Tracer.MaxRecords
		}
	}

	return nil
}
