package config

import (
	"time"

	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              默认值
// ============================================================================

// 默认阈值常量
const (
	// DefaultAckTimeout 默认无确认超时
	DefaultAckTimeout = 30 * time.Second

	// DefaultLeakThreshold 默认订阅泄漏阈值
	DefaultLeakThreshold = 1000

	// DefaultOwnerTTL 默认属主心跳存活窗口
	DefaultOwnerTTL = 60 * time.Second

	// DefaultMaxPoolSize 默认池大小上限
	DefaultMaxPoolSize = 100

	// DefaultSanitizerWorkers 默认清理工作池并发度
	DefaultSanitizerWorkers = 4

	// DefaultSanitizerQueueSize 默认任务队列容量
	DefaultSanitizerQueueSize = 1024

	// DefaultSanitizeDelay 默认清理沉降延迟
	DefaultSanitizeDelay = 5 * time.Second

	// DefaultMaxRetries 默认最大重试次数
	DefaultMaxRetries = 3

	// DefaultBackoffBase 默认退避基数
	DefaultBackoffBase = time.Second

	// DefaultBackoffMax 默认最大退避时间
	DefaultBackoffMax = 30 * time.Second

	// DefaultCleanupTimeout 默认单次清理超时
	DefaultCleanupTimeout = 10 * time.Second

	// DefaultDrainTimeout 默认关闭等待预算
	DefaultDrainTimeout = 30 * time.Second

	// DefaultTracerMaxRecords 默认溯源记录上限
	DefaultTracerMaxRecords = 4096

	// DefaultTracerMaxFrames 默认调用路径最大帧数
	DefaultTracerMaxFrames = 16
)

// DefaultConnectionGuardConfig 返回默认连接防护配置
func DefaultConnectionGuardConfig() ConnectionGuardConfig {
	return ConnectionGuardConfig{
		Mode:       types.ModeDetect,
		AckTimeout: DefaultAckTimeout,
	}
}

// DefaultSubscriptionGuardConfig 返回默认订阅防护配置
func DefaultSubscriptionGuardConfig() SubscriptionGuardConfig {
	return SubscriptionGuardConfig{
		Mode:          types.ModeDetect,
		LeakThreshold: DefaultLeakThreshold,
		OwnerTTL:      DefaultOwnerTTL,
	}
}

// DefaultPoolGuardConfig 返回默认资源池防护配置
func DefaultPoolGuardConfig() PoolGuardConfig {
	return PoolGuardConfig{
		Mode:        types.ModeDetect,
		MaxPoolSize: DefaultMaxPoolSize,
	}
}

// DefaultSanitizerConfig 返回默认延迟清理配置
func DefaultSanitizerConfig() SanitizerConfig {
	return SanitizerConfig{
		Workers:        DefaultSanitizerWorkers,
		QueueSize:      DefaultSanitizerQueueSize,
		Delay:          DefaultSanitizeDelay,
		MaxRetries:     DefaultMaxRetries,
		BackoffBase:    DefaultBackoffBase,
		BackoffMax:     DefaultBackoffMax,
		CleanupTimeout: DefaultCleanupTimeout,
		DrainTimeout:   DefaultDrainTimeout,
	}
}

// DefaultTracerConfig 返回默认溯源记录配置
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		MaxRecords: DefaultTracerMaxRecords,
		MaxFrames:  DefaultTracerMaxFrames,
	}
}
