package collector

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/registration-agent/pkg/metrics"
)

// -------------------------- 主机采集器指标结构体 --------------------------
type hostMetrics struct {
	usageRatio       *prometheus.GaugeVec // CPU使用率（0-1）
	usageModePercent *prometheus.GaugeVec // 按模式的CPU使用率
	load             *prometheus.GaugeVec // 1/5/15分钟负载
	cpuInfo          *prometheus.GaugeVec // CPU元信息
	memUsageRatio    prometheus.Gauge     // 内存使用率
}

// -------------------------- 磁盘/网络采集器指标结构体 --------------------------
type sysMetrics struct {
	diskUsageRatio *prometheus.GaugeVec   // 磁盘使用率（0-1）
	diskFreeBytes  *prometheus.GaugeVec   // 空闲空间（字节）
	transmitBytes  *prometheus.CounterVec // 发送字节数（累计）
	receiveBytes   *prometheus.CounterVec // 接收字节数（累计）
	netErrors      *prometheus.CounterVec // 收发错误数（累计）
}

// SelfMetrics 采集器自身指标，所有采集器共用一组
type SelfMetrics struct {
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSelfMetrics 创建采集器自身指标，同一个工厂只能调用一次
func NewSelfMetrics(f *metrics.MetricFactory) SelfMetrics {
	return SelfMetrics{
		errors:   f.NewAgentCollectErrorsTotal(),
		duration: f.NewAgentCollectDurationSeconds(),
	}
}
