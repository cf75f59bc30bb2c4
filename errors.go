package resguard

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 防护引擎未启动
	ErrNotStarted = errors.New("guard not started")

	// ErrAlreadyStarted 防护引擎已启动
	ErrAlreadyStarted = errors.New("guard already started")

	// ErrGuardClosed 防护引擎已关闭
	ErrGuardClosed = errors.New("guard closed")

	// ────────────────────────────────────────────────────────────────────────
	// 挂载与配置错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNilHost 宿主为空
	ErrNilHost = errors.New("nil host")

	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("nil config")

	// ErrUnknownPreset 未知的预设名称
	ErrUnknownPreset = errors.New("unknown preset")
)
