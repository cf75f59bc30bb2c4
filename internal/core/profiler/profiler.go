// Package profiler 提供检测与清理事件的指标采集
//
// 计数器、仪表和时长直方图全部基于 prometheus 客户端，
// Registerer 由外部注入，测试中使用独立的 Registry 保持隔离。
// 所有计数路径必须能承受大量并发操作上下文的同时写入。
package profiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-resguard/pkg/types"
)

// 指标名称常量
const (
	// MetricDetectedTotal 检测命中计数
	MetricDetectedTotal = "resguard_detected_total"

	// MetricSanitizedTotal 清理完成计数
	MetricSanitizedTotal = "resguard_sanitized_total"

	// MetricActiveSanitizations 在途清理任务数
	MetricActiveSanitizations = "resguard_active_sanitizations"

	// MetricDetectionDuration 检测耗时直方图
	MetricDetectionDuration = "resguard_detection_duration_seconds"

	// MetricSanitizationDuration 清理耗时直方图
	MetricSanitizationDuration = "resguard_sanitization_duration_seconds"

	// MetricResourceCount 各类型资源当前观测数
	MetricResourceCount = "resguard_resource_count"
)

// Profiler 指标采集器
type Profiler struct {
	detected    *prometheus.CounterVec
	sanitized   *prometheus.CounterVec
	active      prometheus.Gauge
	detectDur   *prometheus.HistogramVec
	sanitizeDur *prometheus.HistogramVec
	resources   *prometheus.GaugeVec
}

// New 创建指标采集器并注册到给定 Registerer
func New(reg prometheus.Registerer) (*Profiler, error) {
	p := &Profiler{
		detected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricDetectedTotal,
			Help: "Total number of parasitic pattern detections.",
		}, []string{"component", "pattern", "severity"}),

		sanitized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSanitizedTotal,
			Help: "Total number of completed sanitizations.",
		}, []string{"component", "pattern", "outcome"}),

		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricActiveSanitizations,
			Help: "Number of sanitization tasks currently pending or running.",
		}),

		detectDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: MetricDetectionDuration,
			Help: "Detection chain evaluation latency.",
			// 检测在请求路径上，分桶聚焦亚毫秒区间
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"component"}),

		sanitizeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricSanitizationDuration,
			Help:    "End to end sanitization task latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"component", "outcome"}),

		resources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricResourceCount,
			Help: "Last observed live resource count per kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{
		p.detected, p.sanitized, p.active, p.detectDur, p.sanitizeDur, p.resources,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ============================================================================
//                              检测指标
// ============================================================================

// MarkDetected 记录一次检测命中
func (p *Profiler) MarkDetected(component string, pattern types.PatternID, sev types.Severity) {
	p.detected.WithLabelValues(component, string(pattern), sev.String()).Inc()
}

// ObserveDetection 记录一次检测链求值耗时（无论是否命中）
func (p *Profiler) ObserveDetection(component string, d time.Duration) {
	p.detectDur.WithLabelValues(component).Observe(d.Seconds())
}

// SetResourceCount 更新某类型资源的当前观测数
func (p *Profiler) SetResourceCount(kind types.ResourceKind, n int) {
	p.resources.WithLabelValues(kind.String()).Set(float64(n))
}

// ============================================================================
//                              清理指标
// ============================================================================

// SanitizationStarted 在途清理任务 +1
func (p *Profiler) SanitizationStarted() {
	p.active.Inc()
}

// SanitizationFinished 记录一次清理任务结束
func (p *Profiler) SanitizationFinished(component string, pattern types.PatternID, outcome types.Outcome, d time.Duration) {
	p.active.Dec()
	p.sanitized.WithLabelValues(component, string(pattern), string(outcome)).Inc()
	p.sanitizeDur.WithLabelValues(component, string(outcome)).Observe(d.Seconds())
}
