package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/registration-agent/pkg/registration"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// RegistrationMetrics 注册代理的自身指标，实现 registration.EventSink
type RegistrationMetrics struct {
	resolutionFailures *prometheus.CounterVec
	deliveries         *prometheus.CounterVec
	deliveryFailures   *prometheus.CounterVec
}

var _ registration.EventSink = (*RegistrationMetrics)(nil)

// NewRegistrationMetrics 创建并注册注册代理指标
// 标签说明：
//
//	host:   目标主机名（解析失败时）
//	result: success / failure
//	status: 失败时的 HTTP 状态码，传输层失败为 "-1"
func (m *MetricFactory) NewRegistrationMetrics() *RegistrationMetrics {
	rm := &RegistrationMetrics{
		resolutionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_resolution_failures_total",
			Help: "Destination host resolutions that failed or returned no address",
		}, []string{"host", "reason"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_deliveries_total",
			Help: "Registration deliveries by result",
		}, []string{"result"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_delivery_failures_total",
			Help: "Failed registration deliveries by response status",
		}, []string{"status"}),
	}
	m.reg.MustRegister(rm.resolutionFailures, rm.deliveries, rm.deliveryFailures)
	return rm
}

// ResolutionFailed 实现 registration.EventSink
func (rm *RegistrationMetrics) ResolutionFailed(host string, err error) {
	reason := "error"
	if errors.Is(err, registration.ErrNoAddresses) {
		reason = "no_addresses"
	}
	rm.resolutionFailures.WithLabelValues(host, reason).Inc()
}

// DeliverySucceeded 实现 registration.EventSink
func (rm *RegistrationMetrics) DeliverySucceeded(string) {
	rm.deliveries.WithLabelValues(resultSuccess).Inc()
}

// DeliveryFailed 实现 registration.EventSink
func (rm *RegistrationMetrics) DeliveryFailed(_ string, status int, _ string) {
	rm.deliveries.WithLabelValues(resultFailure).Inc()
	rm.deliveryFailures.WithLabelValues(strconv.Itoa(status)).Inc()
}
