package tracer

import (
	"context"
	"fmt"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-resguard/internal/config"
	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

// mockHandle 模拟资源句柄
type mockHandle struct {
	id     string
	origin string
}

func (m *mockHandle) ID() string                        { return m.id }
func (m *mockHandle) Kind() types.ResourceKind          { return types.KindConnection }
func (m *mockHandle) Origin() string                    { return m.origin }
func (m *mockHandle) Cleanup(_ context.Context) error   { return nil }

func newTestTracer(t *testing.T, maxRecords int) *Tracer {
	t.Helper()
	tr, err := New(config.TracerConfig{
		MaxRecords: maxRecords,
		MaxFrames:  8,
	}, clock.NewMock())
	require.NoError(t, err)
	return tr
}

func verdictFor(h guard.Handle) *guard.Verdict {
	return &guard.Verdict{
		Handle:   h,
		Detector: "no_ack",
		Pattern:  types.PatternNoAck,
		Severity: types.SeverityCritical,
	}
}

// TestCaptureAndGet 捕获后可按句柄 ID 查询
func TestCaptureAndGet(t *testing.T) {
	tr := newTestTracer(t, 16)
	h := &mockHandle{id: "conn-1", origin: "handler.AcceptLoop"}

	tr.Capture("op-42", verdictFor(h))

	rec, ok := tr.Get("conn-1")
	require.True(t, ok)
	assert.Equal(t, "conn-1", rec.HandleID)
	assert.Equal(t, "handler.AcceptLoop", rec.Origin)
	assert.Equal(t, "op-42", rec.OperationID)
	assert.Equal(t, types.PatternNoAck, rec.Pattern)
}

// TestCaptureOverwrites 同一句柄再次命中覆盖旧记录
func TestCaptureOverwrites(t *testing.T) {
	tr := newTestTracer(t, 16)
	h := &mockHandle{id: "conn-1", origin: "a"}

	tr.Capture("op-1", verdictFor(h))
	tr.Capture("op-2", verdictFor(h))

	assert.Equal(t, 1, tr.Len())
	rec, _ := tr.Get("conn-1")
	assert.Equal(t, "op-2", rec.OperationID)
}

// TestBoundEnforced 记录数被 LRU 上限约束
func TestBoundEnforced(t *testing.T) {
	tr := newTestTracer(t, 4)

	for i := 0; i < 10; i++ {
		h := &mockHandle{id: fmt.Sprintf("conn-%d", i)}
		tr.Capture("op", verdictFor(h))
	}

	assert.Equal(t, 4, tr.Len())

	// 最早的记录已被淘汰，最新的仍在
	_, ok := tr.Get("conn-0")
	assert.False(t, ok)
	_, ok = tr.Get("conn-9")
	assert.True(t, ok)
}

// TestCaptureNilVerdict 空结论安全忽略
func TestCaptureNilVerdict(t *testing.T) {
	tr := newTestTracer(t, 4)
	tr.Capture("op", nil)
	assert.Equal(t, 0, tr.Len())
}
