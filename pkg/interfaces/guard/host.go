package guard

import "context"

// ============================================================================
//                              Operation - 入站操作
// ============================================================================

// Operation 一次被防护的入站操作
type Operation struct {
	// ID 操作标识（为空时由拦截器补全）
	ID string

	// Shape 调用方期待的响应形态
	Shape ResponseShape

	// Handle 操作涉及的资源句柄
	Handle Handle
}

// Handler 操作处理函数
type Handler func(ctx context.Context, op *Operation) (*Response, error)

// Middleware 操作管线中间件
//
// 拦截器以中间件形式挂入宿主管线，宿主自身的路由不需要任何改动。
type Middleware func(next Handler) Handler

// ============================================================================
//                              Host - 宿主挂载点
// ============================================================================

// Host 宿主操作管线的最小挂载接口
type Host interface {
	// Use 注册一个管线中间件
	Use(mw Middleware)
}

// ============================================================================
//                              Interceptor - 拦截器
// ============================================================================

// Interceptor 每操作入口的拦截器
//
// 状态机：EVALUATING → {PASSTHROUGH, FLAGGED_DRY, FLAGGED_ACTIVE}；
// FLAGGED_ACTIVE 额外在后台触发 SANITIZING，不阻塞操作自身完成。
// 拦截器内部的任何错误都不会传入宿主，最坏结果是放行（fail-open）。
type Interceptor interface {
	// Intercept 拦截一次操作
	Intercept(ctx context.Context, op *Operation, next Handler) (*Response, error)

	// Middleware 以中间件形式返回拦截逻辑
	Middleware() Middleware
}
