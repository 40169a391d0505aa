package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewCPUUsageRatio 每核（或 total）CPU 使用率，0-1
func (m *MetricFactory) NewCPUUsageRatio() *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "host_cpu_usage_ratio",
		Help: "CPU usage ratio per core",
	}, []string{"core"})
	m.reg.MustRegister(g)
	return g
}

// NewCPULoad 1/5/15 分钟负载，window 标签取值 1m/5m/15m
func (m *MetricFactory) NewCPULoad() *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "host_cpu_load",
		Help: "Load average per window",
	}, []string{"window"})
	m.reg.MustRegister(g)
	return g
}

// NewCPUUsageModePercent 按模式（user, system, idle等）划分的 CPU 使用率
// 两次采样的累计时间差计算得出，首次采样不产生数据
func (m *MetricFactory) NewCPUUsageModePercent() *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "host_cpu_usage_mode_percent",
			Help: "CPU usage percentage by mode (user, system, idle, iowait, etc.)",
		},
		[]string{"cpu", "mode"},
	)
	m.reg.MustRegister(gv)
	return gv
}

// NewCPUInfo CPU 元信息，值恒为 1
func (m *MetricFactory) NewCPUInfo() *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "host_cpu_info",
			Help: "CPU information (model, cores)",
		},
		[]string{"model", "cores"},
	)
	m.reg.MustRegister(gv)
	return gv
}

// NewMemoryUsageRatio 内存使用率
func (m *MetricFactory) NewMemoryUsageRatio() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "host_memory_usage_ratio",
		Help: "Used memory ratio",
	})
	m.reg.MustRegister(g)
	return g
}
