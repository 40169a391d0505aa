package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/registration-agent/pkg/config"
	"github.com/registration-agent/pkg/logger"
	"github.com/registration-agent/pkg/metrics"
)

// hostSource 主机数据来源，默认走 gopsutil，测试中可替换
type hostSource struct {
	percent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	times   func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)
	load    func(ctx context.Context) (*load.AvgStat, error)
	memory  func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	info    func(ctx context.Context) ([]cpu.InfoStat, error)
	counts  func(ctx context.Context, logical bool) (int, error)
}

func gopsutilHostSource() hostSource {
	return hostSource{
		percent: cpu.PercentWithContext,
		times:   cpu.TimesWithContext,
		load:    load.AvgWithContext,
		memory:  mem.VirtualMemoryWithContext,
		info:    cpu.InfoWithContext,
		counts:  cpu.CountsWithContext,
	}
}

// HostCollector CPU/负载/内存采集器（实现 registers.Collector 接口）
type HostCollector struct {
	name    string
	cfg     config.HostDataSourceConfig
	src     hostSource
	metrics hostMetrics
	self    SelfMetrics

	cpuInfoInitialized bool                     // 静态信息只采集一次
	lastCPUTimes       map[string]cpu.TimesStat // 上一次的CPU时间，用于计算按模式使用率
}

// NewHostCollector 创建主机采集器
func NewHostCollector(cfg config.HostDataSourceConfig, f *metrics.MetricFactory, self SelfMetrics) *HostCollector {
	return &HostCollector{
		name:         "host",
		cfg:          cfg,
		src:          gopsutilHostSource(),
		lastCPUTimes: make(map[string]cpu.TimesStat),
		metrics: hostMetrics{
			usageRatio:       f.NewCPUUsageRatio(),
			usageModePercent: f.NewCPUUsageModePercent(),
			load:             f.NewCPULoad(),
			cpuInfo:          f.NewCPUInfo(),
			memUsageRatio:    f.NewMemoryUsageRatio(),
		},
		self: self,
	}
}

// Name 返回采集器名称
func (c *HostCollector) Name() string { return c.name }

// Init 预检查CPU可用性
func (c *HostCollector) Init() error {
	if _, err := c.src.counts(context.Background(), false); err != nil {
		logger.Error("failed to get CPU counts", zap.Error(err))
		return fmt.Errorf("cpu counts: %w", err)
	}
	return nil
}

// Collect 执行指标采集。使用率失败直接返回，其余单项失败只计数不中断
func (c *HostCollector) Collect(ctx context.Context) error {
	start := time.Now()
	defer func() {
		c.self.duration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	// 1. CPU使用率 整体/每核
	usageList, err := c.src.percent(ctx, 0, c.cfg.CollectPerCore)
	if err != nil || len(usageList) == 0 {
		c.self.errors.WithLabelValues(c.name).Inc()
		if err == nil {
			err = fmt.Errorf("empty result")
		}
		return fmt.Errorf("get cpu usage failed: %w", err)
	}
	if c.cfg.CollectPerCore {
		for i, usage := range usageList {
			c.metrics.usageRatio.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(usage / 100)
		}
	} else {
		c.metrics.usageRatio.WithLabelValues("total").Set(usageList[0] / 100)
	}

	// 2. 负载
	if avg, err := c.src.load(ctx); err != nil {
		logger.Warn("failed to get CPU load", zap.Error(err))
		c.self.errors.WithLabelValues(c.name).Inc()
	} else {
		c.metrics.load.WithLabelValues("1m").Set(avg.Load1)
		c.metrics.load.WithLabelValues("5m").Set(avg.Load5)
		c.metrics.load.WithLabelValues("15m").Set(avg.Load15)
	}

	// 3. 内存
	if vm, err := c.src.memory(ctx); err != nil {
		logger.Warn("failed to get memory stats", zap.Error(err))
		c.self.errors.WithLabelValues(c.name).Inc()
	} else {
		c.metrics.memUsageRatio.Set(vm.UsedPercent / 100)
	}

	// 4. 按模式使用率
	if err := c.collectModes(ctx); err != nil {
		logger.Warn("failed to collect CPU mode usage", zap.Error(err))
		c.self.errors.WithLabelValues(c.name).Inc()
	}

	// 5. 静态信息
	if err := c.collectInfo(ctx); err != nil {
		logger.Warn("failed to collect CPU info", zap.Error(err))
		c.self.errors.WithLabelValues(c.name).Inc()
	}
	return nil
}

// collectModes 用两次采样的累计时间差计算各模式占比，首次采样只记录基准
func (c *HostCollector) collectModes(ctx context.Context) error {
	stats, err := c.src.times(ctx, c.cfg.CollectPerCore)
	if err != nil {
		return err
	}
	for _, cur := range stats {
		id := cur.CPU
		if id == "cpu-total" {
			id = "total"
		}
		last, ok := c.lastCPUTimes[id]
		c.lastCPUTimes[id] = cur
		if !ok {
			continue
		}

		deltaTotal := busy(cur) + cur.Idle - busy(last) - last.Idle
		if deltaTotal <= 0 {
			logger.Debug("CPU total time not changed (skip usage calc)", zap.String("cpu", id))
			continue
		}
		modes := map[string]float64{
			"user":    cur.User - last.User,
			"nice":    cur.Nice - last.Nice,
			"system":  cur.System - last.System,
			"idle":    cur.Idle - last.Idle,
			"iowait":  cur.Iowait - last.Iowait,
			"irq":     cur.Irq - last.Irq,
			"softirq": cur.Softirq - last.Softirq,
			"steal":   cur.Steal - last.Steal,
		}
		for mode, delta := range modes {
			c.metrics.usageModePercent.WithLabelValues(id, mode).Set(delta / deltaTotal * 100)
		}
	}
	return nil
}

// busy 非空闲时间之和
func busy(t cpu.TimesStat) float64 {
	return t.User + t.Nice + t.System + t.Iowait + t.Irq + t.Softirq + t.Steal
}

func (c *HostCollector) collectInfo(ctx context.Context) error {
	if c.cpuInfoInitialized {
		return nil
	}
	infos, err := c.src.info(ctx)
	if err != nil {
		return err
	}
	cores, err := c.src.counts(ctx, false)
	if err != nil {
		return err
	}
	model := "unknown"
	if len(infos) > 0 && infos[0].ModelName != "" {
		model = infos[0].ModelName
	}
	c.metrics.cpuInfo.WithLabelValues(model, strconv.Itoa(cores)).Set(1)
	c.cpuInfoInitialized = true
	logger.Info("CPU static info collection completed",
		zap.String("model_name", model),
		zap.Int("physical_cores", cores))
	return nil
}

func (c *HostCollector) Close() error {
	return nil
}
