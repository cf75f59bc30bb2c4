package types

// ============================================================================
//                              ResourceKind - 资源类型
// ============================================================================

// ResourceKind 被防护的资源类型
type ResourceKind int

const (
	// KindUnknown 未知资源类型
	KindUnknown ResourceKind = iota
	// KindConnection 连接类资源（长连接、会话）
	KindConnection
	// KindSubscription 订阅类资源（pub/sub 订阅槽位）
	KindSubscription
	// KindPool 池化类资源（外部连接池、工作池）
	KindPool
)

// String 返回资源类型的字符串表示
func (k ResourceKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindSubscription:
		return "subscription"
	case KindPool:
		return "pool"
	default:
		return "unknown"
	}
}

// Component 返回资源类型对应的防护组件名
//
// 组件名用于配置寻址和指标标签。
func (k ResourceKind) Component() string {
	switch k {
	case KindConnection:
		return "connections"
	case KindSubscription:
		return "subscriptions"
	case KindPool:
		return "pools"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              PatternID - 寄生模式标识
// ============================================================================

// PatternID 寄生模式标识
type PatternID string

const (
	// PatternNoAck 无确认模式：发送后长期收不到确认的连接
	PatternNoAck PatternID = "no_ack"

	// PatternSubscriptionLeak 订阅泄漏模式：存活订阅数超过阈值
	PatternSubscriptionLeak PatternID = "subscription_leak"

	// PatternPoolOrphan 池孤儿模式：借出后从未归还的池化资源
	PatternPoolOrphan PatternID = "pool_orphan"
)

// ============================================================================
//                              Severity - 严重程度
// ============================================================================

// Severity 检测结论的严重程度
type Severity int

const (
	// SeverityNotice 提示级
	SeverityNotice Severity = iota
	// SeverityWarning 警告级
	SeverityWarning
	// SeverityCritical 严重级：检测链遇到即短路
	SeverityCritical
)

// String 返回严重程度的字符串表示
func (s Severity) String() string {
	switch s {
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}
