package catalog

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

// Gatherer 将 Prometheus 注册器适配为计数器目录。
// 每次调用 Counters 都会执行一次 Gather，注册器自身保证并发安全。
type Gatherer struct {
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	since    time.Time
	now      func() time.Time
}

// NewGatherer 创建基于 Prometheus Gatherer 的目录，logger 可为 nil
func NewGatherer(g prometheus.Gatherer, logger *zap.Logger) *Gatherer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gatherer{
		gatherer: g,
		logger:   logger,
		since:    time.Now(),
		now:      time.Now,
	}
}

// Counters 采集并转换全部指标族。
// Gather 返回部分错误时仍使用已返回的指标族，错误只记录日志。
func (g *Gatherer) Counters() []Counter {
	families, err := g.gatherer.Gather()
	if err != nil {
		g.logger.Warn("gather metric families failed", zap.Error(err), zap.Int("families", len(families)))
	}

	end := Millis(g.now())
	out := make([]Counter, 0, len(families))
	for _, mf := range families {
		out = append(out, Counter{
			Name:       mf.GetName(),
			Type:       strings.ToLower(mf.GetType().String()),
			Dimensions: labelNames(mf),
			StartTime:  g.startTime(mf),
			EndTime:    end,
		})
	}
	return out
}

// labelNames 按首次出现顺序收集维度名称
func labelNames(mf *dto.MetricFamily) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if _, ok := seen[lp.GetName()]; ok {
				continue
			}
			seen[lp.GetName()] = struct{}{}
			names = append(names, lp.GetName())
		}
	}
	return names
}

// startTime 优先使用导出的 created 时间戳（取最早的一个），否则使用目录创建时间
func (g *Gatherer) startTime(mf *dto.MetricFamily) int64 {
	var earliest time.Time
	for _, m := range mf.GetMetric() {
		var ts time.Time
		switch {
		case m.GetCounter().GetCreatedTimestamp() != nil:
			ts = m.GetCounter().GetCreatedTimestamp().AsTime()
		case m.GetHistogram().GetCreatedTimestamp() != nil:
			ts = m.GetHistogram().GetCreatedTimestamp().AsTime()
		case m.GetSummary().GetCreatedTimestamp() != nil:
			ts = m.GetSummary().GetCreatedTimestamp().AsTime()
		default:
			continue
		}
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
	}
	if earliest.IsZero() {
		return Millis(g.since)
	}
	return Millis(earliest)
}
