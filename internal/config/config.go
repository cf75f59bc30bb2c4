// Package config 提供 resguard 配置管理层
//
// config 包负责：
// - 定义内部配置结构
// - 提供默认值
// - 配置校验
//
// 配置文件的读取和环境变量的处理由应用层负责，库本身不做 I/O。
// 配置快照一经构建即不可变，运行时更新通过整体替换完成（见
// internal/core/registry）。
package config

import (
	"time"

	"github.com/dep2p/go-resguard/pkg/types"
)

// Config 内部配置结构
//
// 这是详细的内部配置结构，用于组件初始化。
// 用户配置（resguard.UserConfig）会被转换为此结构。
type Config struct {
	// Mode 全局防护模式
	Mode types.Mode

	// KillSwitch 总开关
	// 置位后所有组件的有效模式强制为 Disabled，无视其余配置
	KillSwitch bool

	// Connections 连接防护配置
	Connections ConnectionGuardConfig

	// Subscriptions 订阅防护配置
	Subscriptions SubscriptionGuardConfig

	// Pools 资源池防护配置
	Pools PoolGuardConfig

	// Sanitizer 延迟清理配置
	Sanitizer SanitizerConfig

	// Tracer 溯源记录配置
	Tracer TracerConfig
}

// ConnectionGuardConfig 连接防护配置
type ConnectionGuardConfig struct {
	// Mode 组件模式
	Mode types.Mode

	// AckTimeout 无确认超时
	// 发送后超过该时长未收到确认即标记
	AckTimeout time.Duration
}

// SubscriptionGuardConfig 订阅防护配置
type SubscriptionGuardConfig struct {
	// Mode 组件模式
	Mode types.Mode

	// LeakThreshold 存活订阅数阈值
	// 存活订阅数达到该值即标记
	LeakThreshold int

	// OwnerTTL 属主心跳存活窗口
	// 默认存活探测策略：心跳落在窗口内的属主视为存活
	OwnerTTL time.Duration
}

// PoolGuardConfig 资源池防护配置
type PoolGuardConfig struct {
	// Mode 组件模式
	Mode types.Mode

	// MaxPoolSize 池大小上限
	// active + idle 超过该值即标记
	MaxPoolSize int
}

// SanitizerConfig 延迟清理配置
type SanitizerConfig struct {
	// Workers 工作池并发度
	Workers int

	// QueueSize 任务队列容量
	QueueSize int

	// Delay 清理前的沉降延迟
	// 给在途的正常活动留出收尾时间
	Delay time.Duration

	// MaxRetries 失败清理的最大重试次数
	MaxRetries int

	// BackoffBase 重试退避基数
	BackoffBase time.Duration

	// BackoffMax 最大退避时间
	BackoffMax time.Duration

	// CleanupTimeout 单次清理调用的超时
	CleanupTimeout time.Duration

	// DrainTimeout 关闭时等待在途任务的预算
	DrainTimeout time.Duration
}

// TracerConfig 溯源记录配置
type TracerConfig struct {
	// MaxRecords 溯源记录上限（LRU 淘汰）
	MaxRecords int

	// MaxFrames 调用路径最大帧数
	MaxFrames int
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Mode:          types.ModeDetect,
		Connections:   DefaultConnectionGuardConfig(),
		Subscriptions: DefaultSubscriptionGuardConfig(),
		Pools:         DefaultPoolGuardConfig(),
		Sanitizer:     DefaultSanitizerConfig(),
		Tracer:        DefaultTracerConfig(),
	}
}

// ComponentMode 返回资源类型对应组件的配置模式
//
// 注意：这里只做配置寻址，不计算有效模式；
// 有效模式（含 KillSwitch 与全局模式合并）由 registry 负责。
func (c *Config) ComponentMode(kind types.ResourceKind) types.Mode {
	switch kind {
	case types.KindConnection:
		return c.Connections.Mode
	case types.KindSubscription:
		return c.Subscriptions.Mode
	case types.KindPool:
		return c.Pools.Mode
	default:
		return types.ModeDisabled
	}
}

// Clone 深拷贝配置
//
// 当前结构全部为值类型，浅拷贝即为深拷贝；
// 新增引用类型字段时必须同步更新此方法。
func (c *Config) Clone() *Config {
	dup := *c
	return &dup
}
