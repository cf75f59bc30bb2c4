// Package shaper 实现惰性响应构造器
//
// 给定被标记的句柄与调用方期待的形态，构造一个与健康结果
// 契约兼容、但不携带真实负载的响应。构造为 O(1)、永不失败，
// 绝不重试或触碰真实资源。
package shaper

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
)

// InertShaper 惰性响应构造器
type InertShaper struct {
	clock clock.Clock
}

var _ guard.Shaper = (*InertShaper)(nil)

// New 创建惰性响应构造器
func New(clk clock.Clock) *InertShaper {
	if clk == nil {
		clk = clock.New()
	}
	return &InertShaper{clock: clk}
}

// Shape 构造惰性响应
//
// Payload 恒为 nil：响应结构完整、可被调用方正常消费，
// 但不包含任何真实数据，也没有发生任何 I/O。
func (s *InertShaper) Shape(h guard.Handle, shape guard.ResponseShape) *guard.Response {
	resp := &guard.Response{
		Shape:     shape,
		Synthetic: true,
		IssuedAt:  s.clock.Now(),
	}
	if h != nil {
		resp.HandleID = h.ID()
	}
	return resp
}
