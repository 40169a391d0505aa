package registers

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/registration-agent/pkg/collector"
	"github.com/registration-agent/pkg/config"
	"github.com/registration-agent/pkg/logger"
	"github.com/registration-agent/pkg/metrics"
)

type Module struct {
	Enabled bool
	Name    string
	NewFunc func() Collector
}

// InitPromRegistry 返回值
// promReg  *prometheus.Registry   指标注册器，/metrics 暴露，同时是注册代理宣告的计数器目录
// factory  *metrics.MetricFactory 指标工厂，供注册代理等其它模块创建自身指标
// runner   Runner                 采集器管理器，已启动
func InitPromRegistry(ctx context.Context, cfg *config.Config) (*prometheus.Registry, *metrics.MetricFactory, Runner, error) {
	// 仅注册进程指标（可选），不注册Go指标
	promReg := prometheus.NewRegistry()
	if cfg.Monitor.Process {
		promReg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	// 初始化工厂包装成自己的 Registry
	metricFactory := metrics.NewMetricFactory(metrics.NewPromRegistry(promReg))

	runner := NewRunner(cfg.Monitor.Interval)
	registered := RegisterCollectors(runner, &cfg.Monitor.Collectors, metricFactory)
	logger.Debug("collector enable status",
		zap.Bool("host_enable", cfg.Monitor.Collectors.Host.Enable),
		zap.Bool("sys_enable", cfg.Monitor.Collectors.Sys.Enable),
		zap.Int("registered", len(registered)))

	if err := runner.Start(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("start collectors: %w", err)
	}
	return promReg, metricFactory, runner, nil
}

// RegisterCollectors 采集器注册统一入口（开关控制）
// 新增采集器只需在 modules 列表添加一条
func RegisterCollectors(runner Runner, cfg *config.CollectorConfig, metricFactory *metrics.MetricFactory) []Collector {
	self := collector.NewSelfMetrics(metricFactory)
	modules := []Module{
		{
			Enabled: cfg.Host.Enable,
			Name:    "host",
			NewFunc: func() Collector {
				return collector.NewHostCollector(cfg.Host, metricFactory, self)
			},
		},
		{
			Enabled: cfg.Sys.Enable,
			Name:    "sys",
			NewFunc: func() Collector {
				return collector.NewSysCollector(cfg.Sys, metricFactory, self)
			},
		},
	}

	var registered []Collector
	var names []string
	for _, m := range modules {
		if !m.Enabled {
			logger.Debug("collector disabled", zap.String("name", m.Name))
			continue
		}
		c := m.NewFunc()
		runner.Register(c)
		registered = append(registered, c)
		names = append(names, c.Name())
	}
	if len(registered) == 0 {
		logger.Warn("no host collectors enabled; only process and registration metrics will be published")
		return nil
	}
	logger.Debug("all enabled collectors registered", zap.Strings("enabled_collectors", names))
	return registered
}
