package resguard

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 预设名称
	preset string

	// 全局模式
	mode *types.Mode

	// 连接防护配置
	connections struct {
		mode       *types.Mode
		ackTimeout *time.Duration
	}

	// 订阅防护配置
	subscriptions struct {
		mode          *types.Mode
		leakThreshold *int
		ownerTTL      *time.Duration
	}

	// 池防护配置
	pools struct {
		mode        *types.Mode
		maxPoolSize *int
	}

	// 清理器配置
	sanitizer struct {
		workers      *int
		queueSize    *int
		delay        *time.Duration
		maxRetries   *int
		drainTimeout *time.Duration
	}

	// 溯源配置
	tracer struct {
		maxRecords *int
	}

	// 属主存活策略（覆盖默认心跳策略）
	liveness guard.OwnerLiveness

	// 时钟（测试注入）
	clock clock.Clock

	// 指标注册器（默认独立 Registry）
	registerer prometheus.Registerer

	// 用户自定义配置（JSON/文件加载）
	userConfig *UserConfig
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toInternalConfig 转换为内部配置
//
// 优先级从低到高：默认值 → 预设 → UserConfig → 单项 Option。
func (o *options) toInternalConfig() (*config.Config, error) {
	cfg := config.NewConfig()

	// 应用预设
	if o.preset != "" {
		if err := ApplyPresetToConfig(cfg, o.preset); err != nil {
			return nil, err
		}
	}

	// 应用用户配置文件
	if o.userConfig != nil {
		if err := o.userConfig.applyTo(cfg); err != nil {
			return nil, err
		}
	}

	// 覆盖: 全局模式
	if o.mode != nil {
		cfg.Mode = *o.mode
	}

	// 覆盖: 连接防护
	if o.connections.mode != nil {
		cfg.Connections.Mode = *o.connections.mode
	}
	if o.connections.ackTimeout != nil {
		cfg.Connections.AckTimeout = *o.connections.ackTimeout
	}

	// 覆盖: 订阅防护
	if o.subscriptions.mode != nil {
		cfg.Subscriptions.Mode = *o.subscriptions.mode
	}
	if o.subscriptions.leakThreshold != nil {
		cfg.Subscriptions.LeakThreshold = *o.subscriptions.leakThreshold
	}
	if o.subscriptions.ownerTTL != nil {
		cfg.Subscriptions.OwnerTTL = *o.subscriptions.ownerTTL
	}

	// 覆盖: 池防护
	if o.pools.mode != nil {
		cfg.Pools.Mode = *o.pools.mode
	}
	if o.pools.maxPoolSize != nil {
		cfg.Pools.MaxPoolSize = *o.pools.maxPoolSize
	}

	// 覆盖: 清理器
	if o.sanitizer.workers != nil {
		cfg.Sanitizer.Workers = *o.sanitizer.workers
	}
	if o.sanitizer.queueSize != nil {
		cfg.Sanitizer.QueueSize = *o.sanitizer.queueSize
	}
	if o.sanitizer.delay != nil {
		cfg.Sanitizer.Delay = *o.sanitizer.delay
	}
	if o.sanitizer.maxRetries != nil {
		cfg.Sanitizer.MaxRetries = *o.sanitizer.maxRetries
	}
	if o.sanitizer.drainTimeout != nil {
		cfg.Sanitizer.DrainTimeout = *o.sanitizer.drainTimeout
	}

	// 覆盖: 溯源
	if o.tracer.maxRecords != nil {
		cfg.Tracer.MaxRecords = *o.tracer.maxRecords
	}

	return cfg, nil
}

// ============================================================================
//                              预设与模式选项
// ============================================================================

// WithPreset 使用预设配置
//
// 预设提供针对不同阶段优化的默认配置：
//   - PresetNameObserve: 只检测不处置，用于分阶段上线的观察期
//   - PresetNameEnforce: 全量处置
//   - PresetNameTest: 短时限配置，仅用于测试
func WithPreset(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("预设名称不能为空")
		}
		o.preset = name
		return nil
	}
}

// WithMode 设置全局防护模式
//
//	resguard.New(resguard.WithMode(types.ModeDryRun))
func WithMode(mode types.Mode) Option {
	return func(o *options) error {
		if !mode.Valid() {
			return fmt.Errorf("无效的防护模式: %d", int(mode))
		}
		o.mode = &mode
		return nil
	}
}

// ============================================================================
//                              组件防护选项
// ============================================================================

// WithConnectionGuard 配置连接防护
//
// ackTimeout 为无确认超时：最近一次发送之后超过该时长仍未收到
// 任何确认的连接会被标记。
func WithConnectionGuard(mode types.Mode, ackTimeout time.Duration) Option {
	return func(o *options) error {
		if ackTimeout <= 0 {
			return fmt.Errorf("无确认超时必须为正: %v", ackTimeout)
		}
		o.connections.mode = &mode
		o.connections.ackTimeout = &ackTimeout
		return nil
	}
}

// WithSubscriptionGuard 配置订阅防护
//
// leakThreshold 为单个作用域内存活订阅数的告警阈值。
func WithSubscriptionGuard(mode types.Mode, leakThreshold int) Option {
	return func(o *options) error {
		if leakThreshold <= 0 {
			return fmt.Errorf("订阅泄漏阈值必须为正: %d", leakThreshold)
		}
		o.subscriptions.mode = &mode
		o.subscriptions.leakThreshold = &leakThreshold
		return nil
	}
}

// WithPoolGuard 配置资源池防护
//
// maxPoolSize 为池大小上限，实际大小超过该值即视为存在孤儿条目。
func WithPoolGuard(mode types.Mode, maxPoolSize int) Option {
	return func(o *options) error {
		if maxPoolSize <= 0 {
			return fmt.Errorf("池大小上限必须为正: %d", maxPoolSize)
		}
		o.pools.mode = &mode
		o.pools.maxPoolSize = &maxPoolSize
		return nil
	}
}

// WithOwnerTTL 设置订阅属主的心跳存活窗口
func WithOwnerTTL(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl <= 0 {
			return fmt.Errorf("属主存活窗口必须为正: %v", ttl)
		}
		o.subscriptions.ownerTTL = &ttl
		return nil
	}
}

// WithLiveness 使用自定义属主存活策略
//
// 覆盖默认的心跳策略。宿主可以据此接入自身的会话表：
//
//	resguard.WithLiveness(guard.LivenessFunc(func(owner string) bool {
//	    return sessions.Exists(owner)
//	}))
func WithLiveness(l guard.OwnerLiveness) Option {
	return func(o *options) error {
		if l == nil {
			return fmt.Errorf("存活策略不能为空")
		}
		o.liveness = l
		return nil
	}
}

// ============================================================================
//                              清理器选项
// ============================================================================

// WithSanitizerWorkers 设置清理工作池并发度
func WithSanitizerWorkers(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("工作池并发度必须为正: %d", n)
		}
		o.sanitizer.workers = &n
		return nil
	}
}

// WithSanitizerQueueSize 设置清理任务队列容量
func WithSanitizerQueueSize(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("队列容量必须为正: %d", n)
		}
		o.sanitizer.queueSize = &n
		return nil
	}
}

// WithSanitizeDelay 设置清理前的沉降延迟
func WithSanitizeDelay(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("沉降延迟不能为负: %v", d)
		}
		o.sanitizer.delay = &d
		return nil
	}
}

// WithMaxRetries 设置失败清理的最大重试次数
func WithMaxRetries(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("重试次数不能为负: %d", n)
		}
		o.sanitizer.maxRetries = &n
		return nil
	}
}

// WithDrainTimeout 设置关闭时等待在途清理的预算
func WithDrainTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("关闭等待预算必须为正: %v", d)
		}
		o.sanitizer.drainTimeout = &d
		return nil
	}
}

// ============================================================================
//                              观测选项
// ============================================================================

// WithTracerCapacity 设置溯源记录上限
func WithTracerCapacity(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("溯源记录上限必须为正: %d", n)
		}
		o.tracer.maxRecords = &n
		return nil
	}
}

// WithPrometheusRegisterer 使用外部指标注册器
//
// 默认使用引擎私有的 Registry，宿主已有指标体系时注入自己的。
func WithPrometheusRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return fmt.Errorf("指标注册器不能为空")
		}
		o.registerer = reg
		return nil
	}
}

// WithClock 注入时钟
//
// 仅用于测试，生产环境使用默认的真实时钟。
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		if clk == nil {
			return fmt.Errorf("时钟不能为空")
		}
		o.clock = clk
		return nil
	}
}

// WithUserConfig 应用用户配置
//
// 通常由应用层从 JSON 文件加载后传入：
//
//	data, _ := os.ReadFile("resguard.json")
//	var uc resguard.UserConfig
//	json.Unmarshal(data, &uc)
//	g, _ := resguard.New(resguard.WithUserConfig(&uc))
func WithUserConfig(uc *UserConfig) Option {
	return func(o *options) error {
		if uc == nil {
			return ErrNilConfig
		}
		o.userConfig = uc
		return nil
	}
}
