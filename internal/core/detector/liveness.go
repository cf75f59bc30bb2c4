package detector

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
)

// ============================================================================
//                              HeartbeatLiveness - 心跳存活策略
// ============================================================================

// HeartbeatLiveness 基于心跳时间戳的属主存活策略
//
// 属主存活判定的语义因宿主运行时而异，这里提供默认实现：
// 宿主在属主有活动时调用 Touch，最近一次心跳落在 TTL 窗口内
// 的属主视为存活；从未心跳过的属主同样视为存活（避免把刚创建
// 的属主立即判死）。
type HeartbeatLiveness struct {
	ttl   time.Duration
	clock clock.Clock

	mu       sync.RWMutex
	lastSeen map[string]time.Time
}

var _ guard.OwnerLiveness = (*HeartbeatLiveness)(nil)

// NewHeartbeatLiveness 创建心跳存活策略
func NewHeartbeatLiveness(ttl time.Duration, clk clock.Clock) *HeartbeatLiveness {
	if clk == nil {
		clk = clock.New()
	}
	return &HeartbeatLiveness{
		ttl:      ttl,
		clock:    clk,
		lastSeen: make(map[string]time.Time),
	}
}

// Touch 记录属主的一次心跳
func (l *HeartbeatLiveness) Touch(owner string) {
	now := l.clock.Now()
	l.mu.Lock()
	l.lastSeen[owner] = now
	l.mu.Unlock()
}

// Forget 移除属主的心跳记录
//
// 宿主在属主显式销毁时调用，之后该属主立即视为不可达。
func (l *HeartbeatLiveness) Forget(owner string) {
	l.mu.Lock()
	// 零值时间戳表示显式死亡，与「从未见过」区分开
	l.lastSeen[owner] = time.Time{}
	l.mu.Unlock()
}

// Alive 检查属主是否仍然存活
func (l *HeartbeatLiveness) Alive(owner string) bool {
	l.mu.RLock()
	seen, known := l.lastSeen[owner]
	l.mu.RUnlock()

	if !known {
		return true
	}
	if seen.IsZero() {
		return false
	}
	return l.clock.Now().Sub(seen) <= l.ttl
}
