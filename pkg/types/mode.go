package types

import "fmt"

// ============================================================================
//                              Mode - 防护模式
// ============================================================================

// Mode 防护模式
//
// 模式按限制程度排序：Disabled < DryRun < Detect < Full。
// 两个模式合并时取限制较强（数值较小）的一方。
type Mode int

const (
	// ModeDisabled 完全关闭：不拦截、不替换、不清理
	ModeDisabled Mode = iota
	// ModeDryRun 试运行：仅记录检测结果，用于验证检测准确性
	ModeDryRun
	// ModeDetect 检测：记录检测结果并输出审计日志，不做任何处置
	ModeDetect
	// ModeFull 完全防护：替换响应并调度后台清理
	ModeFull
)

// String 返回模式的字符串表示
func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeDryRun:
		return "dry_run"
	case ModeDetect:
		return "detect"
	case ModeFull:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid 检查模式是否合法
func (m Mode) Valid() bool {
	return m >= ModeDisabled && m <= ModeFull
}

// Min 返回两个模式中限制较强的一方
//
// 用于合并全局模式与组件模式：任一方更严格则整体更严格。
func (m Mode) Min(other Mode) Mode {
	if other < m {
		return other
	}
	return m
}

// ParseMode 解析模式字符串
//
// 支持的值：disabled / dry_run / detect / full。
func ParseMode(s string) (Mode, error) {
	switch s {
	case "disabled":
		return ModeDisabled, nil
	case "dry_run":
		return ModeDryRun, nil
	case "detect":
		return ModeDetect, nil
	case "full":
		return ModeFull, nil
	default:
		return ModeDisabled, fmt.Errorf("unknown guard mode: %q", s)
	}
}
