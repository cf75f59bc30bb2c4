package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestModeOrdering 验证模式的限制强度排序
func TestModeOrdering(t *testing.T) {
	assert.True(t, ModeDisabled < ModeDryRun)
	assert.True(t, ModeDryRun < ModeDetect)
	assert.True(t, ModeDetect < ModeFull)
}

// TestModeMin 验证模式合并取限制较强一方
func TestModeMin(t *testing.T) {
	assert.Equal(t, ModeDisabled, ModeFull.Min(ModeDisabled))
	assert.Equal(t, ModeDryRun, ModeDryRun.Min(ModeFull))
	assert.Equal(t, ModeDetect, ModeFull.Min(ModeDetect))
	assert.Equal(t, ModeFull, ModeFull.Min(ModeFull))
}

// TestParseMode 验证模式字符串解析
func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"disabled": ModeDisabled,
		"dry_run":  ModeDryRun,
		"detect":   ModeDetect,
		"full":     ModeFull,
	}
	for s, want := range cases {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, want, m)
		assert.Equal(t, s, m.String())
	}

	_, err := ParseMode("aggressive")
	assert.Error(t, err)
}

// TestTaskStatusTerminal 验证任务终态判断
func TestTaskStatusTerminal(t *testing.T) {
	assert.False(t, TaskPending.Terminal())
	assert.False(t, TaskRunning.Terminal())
	assert.True(t, TaskSucceeded.Terminal())
	assert.True(t, TaskFailed.Terminal())
}

// TestResourceKindComponent 验证资源类型到组件名的映射
func TestResourceKindComponent(t *testing.T) {
	assert.Equal(t, "connections", KindConnection.Component())
	assert.Equal(t, "subscriptions", KindSubscription.Component())
	assert.Equal(t, "pools", KindPool.Component())
	assert.Equal(t, "unknown", KindUnknown.Component())
}
