package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// -------------------------- 磁盘指标创建方法 --------------------------
func (f *MetricFactory) NewDiskUsageRatio() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_disk_usage_ratio",
			Help: "Disk usage ratio (used / total)",
		},
		[]string{"device", "mountpoint"},
	)
}

func (f *MetricFactory) NewDiskFreeBytes() *prometheus.GaugeVec {
	return promauto.With(f.reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_disk_free_bytes",
			Help: "Disk free space in bytes",
		},
		[]string{"device", "mountpoint"},
	)
}

// -------------------------- 网络指标创建方法 --------------------------
func (f *MetricFactory) NewNetworkTransmitBytesTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_transmit_bytes_total",
			Help: "Total bytes transmitted over the network interface",
		},
		[]string{"interface"},
	)
}

func (f *MetricFactory) NewNetworkReceiveBytesTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_receive_bytes_total",
			Help: "Total bytes received over the network interface",
		},
		[]string{"interface"},
	)
}

func (f *MetricFactory) NewNetworkErrorsTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_network_errors_total",
			Help: "Total transmit and receive errors over the network interface",
		},
		[]string{"interface", "direction"},
	)
}
