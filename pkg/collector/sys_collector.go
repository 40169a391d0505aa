package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/registration-agent/pkg/config"
	"github.com/registration-agent/pkg/logger"
	"github.com/registration-agent/pkg/metrics"
)

type sysSource struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	netIO      func(ctx context.Context, pernic bool) ([]net.IOCountersStat, error)
}

func gopsutilSysSource() sysSource {
	return sysSource{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		netIO:      net.IOCountersWithContext,
	}
}

// SysCollector 磁盘/网络采集器
type SysCollector struct {
	name           string
	src            sysSource
	metrics        sysMetrics
	self           SelfMetrics
	ignoreDisks    map[string]struct{}
	ignoreNetworks map[string]struct{}

	lastNet map[string]net.IOCountersStat
}

// NewSysCollector 创建磁盘/网络采集器
func NewSysCollector(cfg config.SysDataSourceConfig, f *metrics.MetricFactory, self SelfMetrics) *SysCollector {
	c := &SysCollector{
		name: "sys",
		src:  gopsutilSysSource(),
		metrics: sysMetrics{
			diskUsageRatio: f.NewDiskUsageRatio(),
			diskFreeBytes:  f.NewDiskFreeBytes(),
			transmitBytes:  f.NewNetworkTransmitBytesTotal(),
			receiveBytes:   f.NewNetworkReceiveBytesTotal(),
			netErrors:      f.NewNetworkErrorsTotal(),
		},
		self:           self,
		ignoreDisks:    toSet(cfg.IgnoreDisks),
		ignoreNetworks: toSet(cfg.IgnoreNetworks),
		lastNet:        make(map[string]net.IOCountersStat),
	}
	return c
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func (c *SysCollector) Name() string { return c.name }

func (c *SysCollector) Init() error { return nil }

// Collect 磁盘与网络分别采集，任一失败都计数，两者都失败才返回错误
func (c *SysCollector) Collect(ctx context.Context) error {
	start := time.Now()
	defer func() {
		c.self.duration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	diskErr := c.collectDisks(ctx)
	if diskErr != nil {
		logger.Warn("failed to collect disk usage", zap.Error(diskErr))
		c.self.errors.WithLabelValues(c.name).Inc()
	}
	netErr := c.collectNetwork(ctx)
	if netErr != nil {
		logger.Warn("failed to collect network counters", zap.Error(netErr))
		c.self.errors.WithLabelValues(c.name).Inc()
	}
	if diskErr != nil && netErr != nil {
		return fmt.Errorf("collect sys: disk: %v, network: %v", diskErr, netErr)
	}
	return nil
}

func (c *SysCollector) collectDisks(ctx context.Context) error {
	parts, err := c.src.partitions(ctx, false)
	if err != nil {
		return err
	}
	for _, p := range parts {
		if _, skip := c.ignoreDisks[p.Device]; skip {
			continue
		}
		u, err := c.src.usage(ctx, p.Mountpoint)
		if err != nil {
			logger.Debug("skip partition", zap.String("device", p.Device), zap.String("mountpoint", p.Mountpoint), zap.Error(err))
			continue
		}
		c.metrics.diskUsageRatio.WithLabelValues(p.Device, p.Mountpoint).Set(u.UsedPercent / 100)
		c.metrics.diskFreeBytes.WithLabelValues(p.Device, p.Mountpoint).Set(float64(u.Free))
	}
	return nil
}

// collectNetwork 把内核累计值转换为计数器增量；首次采样与计数回绕只更新基准
func (c *SysCollector) collectNetwork(ctx context.Context) error {
	stats, err := c.src.netIO(ctx, true)
	if err != nil {
		return err
	}
	for _, cur := range stats {
		if _, skip := c.ignoreNetworks[cur.Name]; skip {
			continue
		}
		last, ok := c.lastNet[cur.Name]
		c.lastNet[cur.Name] = cur
		if !ok {
			continue
		}
		addDelta(c.metrics.transmitBytes.WithLabelValues(cur.Name).Add, cur.BytesSent, last.BytesSent)
		addDelta(c.metrics.receiveBytes.WithLabelValues(cur.Name).Add, cur.BytesRecv, last.BytesRecv)
		addDelta(c.metrics.netErrors.WithLabelValues(cur.Name, "transmit").Add, cur.Errout, last.Errout)
		addDelta(c.metrics.netErrors.WithLabelValues(cur.Name, "receive").Add, cur.Errin, last.Errin)
	}
	return nil
}

func addDelta(add func(float64), cur, last uint64) {
	if cur > last {
		add(float64(cur - last))
	}
}

func (c *SysCollector) Close() error { return nil }
