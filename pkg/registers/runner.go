package registers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/registration-agent/pkg/logger"
)

// CollectorRunner 实现 Runner 接口：启动后立即采集一次，之后按间隔采集
type CollectorRunner struct {
	collectors []Collector
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	mu         sync.Mutex
	started    bool
}

// NewRunner 创建采集器运行器
func NewRunner(interval time.Duration) *CollectorRunner {
	ctx, cancel := context.WithCancel(context.Background())
	return &CollectorRunner{
		collectors: make([]Collector, 0),
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register 注册采集器，Start 之后注册的采集器不会被调度
func (r *CollectorRunner) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors = append(r.collectors, c)
}

// Collectors 返回已注册采集器的副本
func (r *CollectorRunner) Collectors() []Collector {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make([]Collector, len(r.collectors))
	copy(copied, r.collectors)
	return copied
}

// InitAll 初始化所有采集器，任一失败即返回
func (r *CollectorRunner) InitAll() error {
	for _, coll := range r.Collectors() {
		if err := coll.Init(); err != nil {
			return fmt.Errorf("collector %s init failed: %w", coll.Name(), err)
		}
		logger.Debug("collector initialized successfully", zap.String("name", coll.Name()))
	}
	return nil
}

// Start 初始化并启动采集循环，同时监听外部 ctx 和内部关闭信号
func (r *CollectorRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("collector runner already started")
	}
	r.started = true
	r.mu.Unlock()

	if err := r.InitAll(); err != nil {
		close(r.done)
		return err
	}

	ticker := time.NewTicker(r.interval)
	logger.Debug("collector runner started",
		zap.Duration("interval", r.interval),
		zap.Int("registered-collectors-count", len(r.Collectors())))

	go func() {
		defer close(r.done)
		defer ticker.Stop()

		// 首次采集（失败仅警告）
		if err := r.CollectAll(ctx); err != nil {
			logger.Warn("first collection failed", zap.Error(err))
		}
		for {
			select {
			case <-ticker.C:
				_ = r.CollectAll(ctx) // 单采集器失败不影响整体
			case <-ctx.Done():
				logger.Info("collector runner stopped by external context", zap.Error(ctx.Err()))
				return
			case <-r.ctx.Done():
				logger.Info("collector runner stopped by shutdown")
				return
			}
		}
	}()
	return nil
}

// Shutdown 停止采集循环并关闭所有采集器
func (r *CollectorRunner) Shutdown(ctx context.Context) error {
	r.cancel()

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		select {
		case <-r.done:
		case <-ctx.Done():
			return fmt.Errorf("wait collector loop: %w", ctx.Err())
		}
	}
	return r.CloseAll()
}

// CollectAll 依次执行所有采集器，错误合并返回
func (r *CollectorRunner) CollectAll(ctx context.Context) error {
	var errs error
	for _, c := range r.Collectors() {
		if err := c.Collect(ctx); err != nil {
			logger.Warn("collection failed", zap.String("name", c.Name()), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		}
	}
	return errs
}

// CloseAll 关闭所有采集器，不因单个失败中断
func (r *CollectorRunner) CloseAll() error {
	var errs error
	for _, c := range r.Collectors() {
		if err := c.Close(); err != nil {
			logger.Error("failed to close collector", zap.String("name", c.Name()), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
