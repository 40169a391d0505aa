package metrics

// MetricFactory 指标工厂，用于统一创建指标（counter/gauge/histogram）。
// 所有指标都注册到同一个 Registers 上，这个注册器同时也是注册代理对外宣告的计数器目录。
type MetricFactory struct {
	reg Registers
}

// NewMetricFactory 创建指标工厂
func NewMetricFactory(reg Registers) *MetricFactory {
	return &MetricFactory{reg: reg}
}
