// Package types 定义 resguard 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 resguard 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - mode.go     - Mode 防护模式及其排序/合并规则
//   - resource.go - ResourceKind, PatternID, Severity
//   - task.go     - TaskStatus, Outcome
package types
