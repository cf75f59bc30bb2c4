// Package tracer 提供被标记资源的有界溯源记录
//
// 每个被标记的句柄保留一条溯源记录：来源标识、操作 ID、
// 有界的调用路径和命中信息。记录总数由 LRU 上限约束，
// 记录本身不持有真实资源句柄，也不携带任何业务负载。
package tracer

import (
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/lib/log"
	"github.com/dep2p/go-resguard/pkg/types"
)

var logger = log.Logger("core/tracer")

// Record 单条溯源记录
type Record struct {
	// HandleID 被标记资源的 ID
	HandleID string

	// Origin 资源的来源标识（句柄自带的 provenance id）
	Origin string

	// OperationID 触发检测的操作 ID
	OperationID string

	// Pattern 命中的寄生模式
	Pattern types.PatternID

	// Severity 严重程度
	Severity types.Severity

	// CallPath 捕获时的调用路径（帧数有界）
	CallPath []string

	// At 记录时间
	At time.Time
}

// Tracer 有界溯源记录器
type Tracer struct {
	records   *lru.Cache[string, Record]
	maxFrames int
	clock     clock.Clock
}

// New 创建溯源记录器
func New(cfg config.TracerConfig, clk clock.Clock) (*Tracer, error) {
	if clk == nil {
		clk = clock.New()
	}

	cache, err := lru.New[string, Record](cfg.MaxRecords)
	if err != nil {
		return nil, err
	}

	return &Tracer{
		records:   cache,
		maxFrames: cfg.MaxFrames,
		clock:     clk,
	}, nil
}

// Capture 为被标记的句柄记录一条溯源
//
// 同一句柄再次命中时覆盖旧记录（每句柄至多一条）。
func (t *Tracer) Capture(operationID string, v *guard.Verdict) {
	if v == nil || v.Handle == nil {
		return
	}

	rec := Record{
		HandleID:    v.Handle.ID(),
		Origin:      v.Handle.Origin(),
		OperationID: operationID,
		Pattern:     v.Pattern,
		Severity:    v.Severity,
		CallPath:    t.callPath(),
		At:          t.clock.Now(),
	}

	evicted := t.records.Add(rec.HandleID, rec)
	if evicted {
		logger.Debug("溯源记录达到上限，按 LRU 淘汰旧记录")
	}
}

// Get 查询句柄的溯源记录
func (t *Tracer) Get(handleID string) (Record, bool) {
	return t.records.Get(handleID)
}

// Len 返回当前记录数
func (t *Tracer) Len() int {
	return t.records.Len()
}

// callPath 捕获有界的调用路径
//
// 跳过 tracer 与拦截器自身的帧，只保留调用方可读的函数名。
func (t *Tracer) callPath() []string {
	pcs := make([]uintptr, t.maxFrames)
	// skip: runtime.Callers, callPath, Capture
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	path := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.Contains(frame.Function, "go-resguard/internal/core") {
			path = append(path, frame.Function+":"+strconv.Itoa(frame.Line))
		}
		if !more || len(path) >= t.maxFrames {
			break
		}
	}
	return path
}
