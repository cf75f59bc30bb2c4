package shaper

import (
	"context"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-resguard/pkg/interfaces/guard"
	"github.com/dep2p/go-resguard/pkg/types"
)

type mockHandle struct{ id string }

func (m *mockHandle) ID() string                      { return m.id }
func (m *mockHandle) Kind() types.ResourceKind        { return types.KindConnection }
func (m *mockHandle) Origin() string                  { return "test" }
func (m *mockHandle) Cleanup(_ context.Context) error { return nil }

// TestShapeAllShapes 各形态均产出结构完整的惰性响应
func TestShapeAllShapes(t *testing.T) {
	clk := clock.NewMock()
	s := New(clk)
	h := &mockHandle{id: "conn-1"}

	for _, shape := range []guard.ResponseShape{
		guard.ShapeAck, guard.ShapeMessage, guard.ShapeSubscribeOK, guard.ShapeLease,
	} {
		resp := s.Shape(h, shape)
		require.NotNil(t, resp)
		assert.Equal(t, shape, resp.Shape)
		assert.Equal(t, "conn-1", resp.HandleID)
		assert.True(t, resp.Synthetic)
		assert.Nil(t, resp.Payload)
		assert.Equal(t, clk.Now(), resp.IssuedAt)
	}
}

// TestShapeNilHandle 空句柄不会 panic
func TestShapeNilHandle(t *testing.T) {
	s := New(clock.NewMock())

	var resp *guard.Response
	require.NotPanics(t, func() {
		resp = s.Shape(nil, guard.ShapeAck)
	})
	require.NotNil(t, resp)
	assert.Empty(t, resp.HandleID)
	assert.True(t, resp.Synthetic)
}
