// Package guard 定义寄生资源防护引擎的公共接口
//
// 防护引擎只通过本包的窄接口观察真实资源，不拥有资源本身：
//   - Handle        - 资源句柄（只读状态快照 + 清理入口）
//   - Detector      - 寄生模式检测器（纯函数式求值）
//   - Shaper        - 惰性响应构造器
//   - Sanitizer     - 延迟清理调度器
//   - Middleware    - 宿主操作管线挂载点
//
// 真实的连接管理器、pub/sub 总线、资源池由宿主系统拥有，
// 引擎对它们的全部可见面就是 Handle 的状态快照与 Cleanup 入口。
package guard
