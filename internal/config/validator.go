package config

import (
	"fmt"
	"strings"
)

// ValidationError 配置校验错误
//
// 安全相关的配置项非法时在启动阶段直接失败，绝不静默回退默认值。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个配置校验错误
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors 是否有错误
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// validator 配置校验器
type validator struct {
	errors ValidationErrors
}

// addError 添加错误
func (v *validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// Validate 校验配置
//
// 返回 nil 表示配置合法；否则返回聚合后的 ValidationErrors。
func Validate(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Field: "config", Message: "配置为空"}
	}

	v := &validator{}

	v.validateModes(cfg)
	v.validateThresholds(cfg)
	v.validateSanitizer(&cfg.Sanitizer)
	v.validateTracer(&cfg.Tracer)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateModes 校验全局与组件模式
func (v *validator) validateModes(cfg *Config) {
	if !cfg.Mode.Valid() {
		v.addError("mode", fmt.Sprintf("非法的全局模式: %d", int(cfg.Mode)))
	}
	if !cfg.Connections.Mode.Valid() {
		v.addError("connections.mode", fmt.Sprintf("非法的组件模式: %d", int(cfg.Connections.Mode)))
	}
	if !cfg.Subscriptions.Mode.Valid() {
		v.addError("subscriptions.mode", fmt.Sprintf("非法的组件模式: %d", int(cfg.Subscriptions.Mode)))
	}
	if !cfg.Pools.Mode.Valid() {
		v.addError("pools.mode", fmt.Sprintf("非法的组件模式: %d", int(cfg.Pools.Mode)))
	}
}

// validateThresholds 校验各模式阈值
func (v *validator) validateThresholds(cfg *Config) {
	if cfg.Connections.AckTimeout <= 0 {
		v.addError("connections.ack_timeout", "必须大于 0")
	}
	if cfg.Subscriptions.LeakThreshold <= 0 {
		v.addError("subscriptions.leak_threshold", "必须大于 0")
	}
	if cfg.Subscriptions.OwnerTTL <= 0 {
		v.addError("subscriptions.owner_ttl", "必须大于 0")
	}
	if cfg.Pools.MaxPoolSize <= 0 {
		v.addError("pools.max_pool_size", "必须大于 0")
	}
}

// validateSanitizer 校验延迟清理配置
func (v *validator) validateSanitizer(cfg *SanitizerConfig) {
	if cfg.Workers <= 0 {
		v.addError("sanitizer.workers", "必须大于 0")
	}
	if cfg.QueueSize <= 0 {
		v.addError("sanitizer.queue_size", "必须大于 0")
	}
	if cfg.Delay < 0 {
		v.addError("sanitizer.delay", "不能为负")
	}
	if cfg.MaxRetries < 0 {
		v.addError("sanitizer.max_retries", "不能为负")
	}
	if cfg.BackoffBase <= 0 {
		v.addError("sanitizer.backoff_base", "必须大于 0")
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		v.addError("sanitizer.backoff_max", "不能小于 backoff_base")
	}
	if cfg.CleanupTimeout <= 0 {
		v.addError("sanitizer.cleanup_timeout", "必须大于 0")
	}
	if cfg.DrainTimeout <= 0 {
		v.addError("sanitizer.drain_timeout", "必须大于 0")
	}
}

// validateTracer 校验溯源记录配置
func (v *validator) validateTracer(cfg *TracerConfig) {
	if cfg.MaxRecords <= 0 {
		v.addError("tracer.max_records", "必须大于 0")
	}
	if cfg.MaxFrames <= 0 {
		v.addError("tracer.max_frames", "必须大于 0")
	}
}
