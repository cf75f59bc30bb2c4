// Package resguard 为长生命周期服务提供资源寄生防护
//
// ResGuard (Resource Guard) 是一个检测-处置引擎，保护宿主服务免受
// 占着资源不干活的访问模式侵蚀：发了不收确认的连接、属主已死却
// 仍然挂着的订阅、归还不回来的池条目。
//
// # 核心概念
//
// ResGuard 围绕三个核心概念构建：
//
//   - Guard: 防护引擎，宿主交互的主入口
//   - Handle: 被防护资源的只读句柄，由宿主的资源管理器提供
//   - Mode: 分阶段上线的防护模式（disabled → dry_run → detect → full)
//
// # 快速开始
//
//	import "github.com/dep2p/go-resguard"
//
//	// 1. 创建并启动引擎
//	g, err := resguard.New(
//	    resguard.WithPreset(resguard.PresetNameObserve),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := g.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	// 2. 挂载到宿主的操作管线
//	g.Attach(host)
//
//	// 3. 观察期结束后切到全量处置
//	g.SetMode(types.ModeFull)
//
// # API 层次结构
//
//	┌────────────────────────────────────────────────────────────┐
//	│  入口层                                                     │
//	│  ┌─────────┐                                                │
//	│  │  Guard  │  resguard.New() / g.Attach() / g.Intercept()  │
//	│  └─────────┘                                                │
//	├────────────────────────────────────────────────────────────┤
//	│  决策层                                                     │
//	│  ┌─────────────┐                                            │
//	│  │ Interceptor │  每操作：检测 → 记录 → 处置               │
//	│  └─────────────┘                                            │
//	├────────────────────────────────────────────────────────────┤
//	│  检测与动作层                                               │
//	│  ┌──────────┐ ┌────────┐ ┌───────────┐                     │
//	│  │ Detectors│ │ Shaper │ │ Sanitizer │                     │
//	│  └──────────┘ └────────┘ └───────────┘                     │
//	├────────────────────────────────────────────────────────────┤
//	│  观测层                                                     │
//	│  ┌──────────┐ ┌────────┐ ┌──────────┐                      │
//	│  │ Registry │ │ Tracer │ │ Profiler │                      │
//	│  └──────────┘ └────────┘ └──────────┘                      │
//	└────────────────────────────────────────────────────────────┘
//
// # 失败语义
//
// 引擎自身的任何内部错误都不会进入宿主的操作路径（fail-open）：
// 检测 panic、清理失败、队列打满，最坏结果都只是如同引擎不存在
// 一样放行操作。真实资源的清理失败会按指数退避重试，超过次数后
// 记录溯源并放弃。
package resguard
