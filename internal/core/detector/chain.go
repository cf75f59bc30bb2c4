// Package detector 实现寄生模式检测器与检测链
//
// 检测器是观测状态的纯函数：只读取句柄的状态快照与一份一致的
// 配置快照，无 I/O、无副作用。检测链按注册顺序运行与句柄类型
// 匹配的检测器：
//   - 首个 Critical 结论立即短路
//   - 否则严重程度最高者胜出，同级按注册顺序取先
//   - 单个检测器 panic 被捕获并记录，仅对该检测器视为未命中，
//     绝不中断兄弟检测器或外层操作
package detector

import (
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("core/detector")

// Chain 检测链
//
// 注册在构建阶段完成，Evaluate 阶段只读，因此无需加锁。
type Chain struct {
	detectors map[types.ResourceKind][]guard.Detector
}

var _ guard.Chain = (*Chain)(nil)

// NewChain 创建检测链
func NewChain(detectors ...guard.Detector) *Chain {
	c := &Chain{
		detectors: make(map[types.ResourceKind][]guard.Detector),
	}
	for _, d := range detectors {
		c.Register(d)
	}
	return c
}

// Register 注册检测器（按调用顺序排序）
//
// 只允许在链投入使用前调用。
func (c *Chain) Register(d guard.Detector) {
	c.detectors[d.Kind()] = append(c.detectors[d.Kind()], d)
	logger.Debug("检测器已注册", "name", d.Name(), "kind", d.Kind().String())
}

// Evaluate 对句柄运行检测链
func (c *Chain) Evaluate(h guard.Handle) (*guard.Verdict, bool) {
	if h == nil {
		return nil, false
	}

	var best *guard.Verdict
	for _, d := range c.detectors[h.Kind()] {
		v, ok := c.detectOne(d, h)
		if !ok {
			continue
		}

		// 首个 Critical 立即短路
		if v.Severity == types.SeverityCritical {
			return v, true
		}

		// 严重程度最高者胜出，同级保持注册顺序的先者
		if best == nil || v.Severity > best.Severity {
			best = v
		}
	}

	return best, best != nil
}

// detectOne 运行单个检测器并隔离其 panic
func (c *Chain) detectOne(d guard.Detector, h guard.Handle) (v *guard.Verdict, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("检测器异常，视为未命中",
				"detector", d.Name(),
				"handleID", log.TruncateID(h.ID(), 16),
				"panic", r)
			v, ok = nil, false
		}
	}()

	return d.Detect(h)
}
