package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-resguard/pkg/types"
)

// TestValidateDefaults 默认配置必须合法
func TestValidateDefaults(t *testing.T) {
	require.NoError(t, Validate(NewConfig()))
}

// TestValidateNil 空配置报错
func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

// TestValidateInvalidMode 非法模式在启动阶段直接失败
func TestValidateInvalidMode(t *testing.T) {
	cfg := NewConfig()
	cfg.Mode = types.Mode(42)

	err := Validate(cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.HasErrors())
	assert.Contains(t, err.Error(), "mode")
}

// TestValidateThresholds 非法阈值逐项上报
func TestValidateThresholds(t *testing.T) {
	cfg := NewConfig()
	cfg.Connections.AckTimeout = 0
	cfg.Subscriptions.LeakThreshold = -1
	cfg.Pools.MaxPoolSize = 0

	err := Validate(cfg)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

// TestValidateSanitizer 清理配置边界
func TestValidateSanitizer(t *testing.T) {
	cfg := NewConfig()
	cfg.Sanitizer.Workers = 0
	cfg.Sanitizer.BackoffMax = cfg.Sanitizer.BackoffBase - time.Millisecond

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sanitizer.workers")
	assert.Contains(t, err.Error(), "sanitizer.backoff_max")
}

// TestClone 配置克隆互不影响
func TestClone(t *testing.T) {
	cfg := NewConfig()
	dup := cfg.Clone()

	dup.Mode = types.ModeFull
	dup.Pools.MaxPoolSize = 7

	assert.Equal(t, types.ModeDetect, cfg.Mode)
	assert.Equal(t, DefaultMaxPoolSize, cfg.Pools.MaxPoolSize)
}

// TestComponentMode 组件模式寻址
func TestComponentMode(t *testing.T) {
	cfg := NewConfig()
	cfg.Connections.Mode = types.ModeFull
	cfg.Subscriptions.Mode = types.ModeDryRun
	cfg.Pools.Mode = types.ModeDisabled

	assert.Equal(t, types.ModeFull, cfg.ComponentMode(types.KindConnection))
	assert.Equal(t, types.ModeDryRun, cfg.ComponentMode(types.KindSubscription))
	assert.Equal(t, types.ModeDisabled, cfg.ComponentMode(types.KindPool))
	assert.Equal(t, types.ModeDisabled, cfg.ComponentMode(types.KindUnknown))
}
