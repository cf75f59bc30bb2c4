package guard

import (
	"context"
	"time"

	"github.com/dep2p/go-resguard/pkg/types"
)

// ============================================================================
//                              Handle - 资源句柄
// ============================================================================

// Handle 被防护资源的只读句柄
//
// 句柄由真实资源的管理器创建和销毁，防护引擎只观察、不拥有。
// 同一资源的多次观察必须返回同一 ID（去重以 ID 为键）。
type Handle interface {
	// ID 返回资源的唯一标识
	ID() string

	// Kind 返回资源类型
	Kind() types.ResourceKind

	// Origin 返回资源的来源标识（创建方的调用路径或请求 ID）
	Origin() string

	// Cleanup 执行真实清理（断开/退订/释放）
	//
	// 只由 Sanitizer 在后台调用，必须幂等。
	Cleanup(ctx context.Context) error
}

// ============================================================================
//                              状态快照
// ============================================================================

// ConnState 连接类资源的状态快照
type ConnState struct {
	// LastSend 最近一次发送时间（零值表示从未发送）
	LastSend time.Time

	// LastAck 最近一次收到确认的时间（零值表示从未确认）
	LastAck time.Time

	// Sent 累计发送条数
	Sent uint64

	// Acked 累计确认条数
	Acked uint64
}

// Subscriber 单个订阅条目
type Subscriber struct {
	// ID 订阅标识
	ID string

	// Owner 持有该订阅的属主标识
	Owner string
}

// SubState 订阅类资源的状态快照
//
// 快照覆盖一个订阅作用域（如一个主题或一个客户端会话）内的全部订阅。
type SubState struct {
	// Subscribers 当前登记的全部订阅
	Subscribers []Subscriber
}

// PoolState 池化类资源的状态快照
type PoolState struct {
	// Size 池的总大小（active + idle）
	Size int

	// CheckedOut 已借出数量
	CheckedOut int

	// Idle 空闲数量
	Idle int
}

// ============================================================================
//                              类型化句柄
// ============================================================================

// ConnectionHandle 连接类资源句柄
type ConnectionHandle interface {
	Handle

	// ConnState 返回连接状态快照
	ConnState() ConnState
}

// SubscriptionHandle 订阅类资源句柄
type SubscriptionHandle interface {
	Handle

	// SubState 返回订阅作用域状态快照
	SubState() SubState
}

// PoolHandle 池化类资源句柄
type PoolHandle interface {
	Handle

	// PoolState 返回池状态快照
	PoolState() PoolState
}

// ============================================================================
//                              OwnerLiveness - 属主存活探测
// ============================================================================

// OwnerLiveness 订阅属主存活探测策略
//
// 「属主是否仍然可达」的语义因宿主运行时而异，因此作为可插拔策略注入。
// 默认实现基于心跳时间戳（见 internal/core/detector 的 HeartbeatLiveness）。
type OwnerLiveness interface {
	// Alive 检查属主是否仍然存活
	Alive(owner string) bool
}

// LivenessFunc 函数式 OwnerLiveness 适配器
type LivenessFunc func(owner string) bool

// Alive 实现 OwnerLiveness 接口
func (f LivenessFunc) Alive(owner string) bool {
	return f(owner)
}
