package guard

import "time"

// ============================================================================
//                              ResponseShape - 响应形态
// ============================================================================

// ResponseShape 调用方期待的响应形态
type ResponseShape int

const (
	// ShapeAck 确认型响应（发送类操作）
	ShapeAck ResponseShape = iota
	// ShapeMessage 消息型响应（接收/拉取类操作）
	ShapeMessage
	// ShapeSubscribeOK 订阅确认型响应
	ShapeSubscribeOK
	// ShapeLease 租借型响应（池借出类操作）
	ShapeLease
)

// String 返回响应形态的字符串表示
func (s ResponseShape) String() string {
	switch s {
	case ShapeAck:
		return "ack"
	case ShapeMessage:
		return "message"
	case ShapeSubscribeOK:
		return "subscribe_ok"
	case ShapeLease:
		return "lease"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Response - 操作响应
// ============================================================================

// Response 操作响应
//
// 真实处理器与惰性响应构造器返回同一结构，
// 保证被拦截的操作拿到契约兼容的结果。
type Response struct {
	// Shape 响应形态
	Shape ResponseShape

	// HandleID 关联的资源句柄 ID
	HandleID string

	// Synthetic 是否为防护引擎构造的惰性响应
	//
	// 惰性响应不携带真实负载，也从未触碰真实资源。
	Synthetic bool

	// IssuedAt 响应生成时间
	IssuedAt time.Time

	// Payload 真实负载（惰性响应恒为 nil）
	Payload []byte
}

// ============================================================================
//                              Shaper - 惰性响应构造器
// ============================================================================

// Shaper 惰性响应构造器
//
// 给定被标记的句柄与调用方期待的形态，构造一个结构上与健康结果
// 兼容、但不携带真实负载的响应。构造为 O(1)、永不失败、
// 绝不触碰真实资源。
type Shaper interface {
	// Shape 构造惰性响应
	Shape(h Handle, shape ResponseShape) *Response
}
