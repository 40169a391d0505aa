// Package registration 实现自注册（心跳）代理：周期性解析目标主机名，
// 将本进程身份与当前计数器目录序列化后，独立投递到每一个解析出的地址。
//
// 调度采用自重排定时器：一轮的投递全部派发后才安排下一轮，
// 间隔为 max(配置间隔, RequestTimeout)，网络变慢时自然降速而不是堆积并发轮次。
package registration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/registration-agent/pkg/catalog"
)

// State 代理生命周期状态
type State int

const (
	StateCreated State = iota
	StateRunning
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Agent 注册代理
type Agent struct {
	cfg       Config
	interval  time.Duration
	catalog   catalog.Catalog
	codec     Serializer
	resolver  Resolver
	sink      EventSink
	logger    *zap.Logger
	clock     clock.Clock
	transport http.RoundTripper

	// mu 只保护以下句柄与状态，绝不跨网络 I/O 持有
	mu     sync.Mutex
	state  State
	timer  *clock.Timer
	client *http.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建注册代理，配置和协作方在此处一次性校验
func New(cfg Config, cat catalog.Catalog, codec Serializer, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingCatalog)
	}
	if codec == nil {
		return nil, fmt.Errorf("%w: serializer is required", ErrInvalidConfig)
	}

	a := &Agent{
		cfg:      cfg,
		interval: EffectiveInterval(cfg.Interval),
		catalog:  cat,
		codec:    codec,
		resolver: NewResolver(cfg.DNSServer),
		sink:     NewLogSink(nil),
		logger:   zap.NewNop(),
		clock:    clock.New(),
		state:    StateCreated,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Interval 实际调度间隔
func (a *Agent) Interval() time.Duration { return a.interval }

// State 当前生命周期状态
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Start 启动代理并立即执行第一轮注册，只能调用一次
func (a *Agent) Start() error {
	a.mu.Lock()
	switch a.state {
	case StateRunning:
		a.mu.Unlock()
		return ErrAlreadyStarted
	case StateDisposed:
		a.mu.Unlock()
		return ErrDisposed
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.client = a.newClient()
	a.state = StateRunning
	a.mu.Unlock()

	a.logger.Info("registration agent started",
		zap.String("destination", a.cfg.DestinationHost),
		zap.Int("destination_port", a.cfg.DestinationPort),
		zap.String("source", a.cfg.SourceHost),
		zap.Int("source_port", a.cfg.SourcePort),
		zap.Duration("interval", a.interval))

	go a.fire()
	return nil
}

// Stop 停止调度、取消在途请求并释放连接池，可重复调用。
// 不等待在途投递结束，它们会以取消结果安静退出。
func (a *Agent) Stop() {
	a.mu.Lock()
	if a.state == StateDisposed {
		a.mu.Unlock()
		return
	}
	a.state = StateDisposed
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	client := a.client
	a.client = nil
	a.mu.Unlock()

	if client != nil {
		client.CloseIdleConnections()
	}
	a.logger.Info("registration agent stopped")
}

// Close 实现 io.Closer
func (a *Agent) Close() error {
	a.Stop()
	return nil
}

func (a *Agent) newClient() *http.Client {
	transport := a.transport
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   RequestTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   RequestTimeout,
		// 重定向视为失败响应，不跟随
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// fire 执行一轮注册，结束后（无论成败）重新安排下一轮
func (a *Agent) fire() {
	a.mu.Lock()
	if a.state != StateRunning {
		a.mu.Unlock()
		return
	}
	ctx, client := a.ctx, a.client
	a.mu.Unlock()

	defer a.rearm()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("registration round panicked", zap.Any("panic", r))
		}
	}()

	a.round(ctx, client)
}

func (a *Agent) rearm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRunning {
		return
	}
	a.timer = a.clock.AfterFunc(a.interval, a.fire)
}

func (a *Agent) round(ctx context.Context, client *http.Client) {
	log := a.logger.With(zap.String("round", uuid.NewString()))

	addrs, err := a.resolve(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug("registration round cancelled during resolution")
			return
		}
		a.sink.ResolutionFailed(a.cfg.DestinationHost, err)
		return
	}

	record := NewRecord(a.cfg, a.catalog.Counters())
	payload, err := a.codec.Marshal(record)
	if err != nil {
		log.Error("serialize registration record failed", zap.Error(err))
		return
	}

	for _, addr := range addrs {
		go a.deliver(ctx, client, a.target(addr), payload)
	}
	log.Debug("registration round dispatched",
		zap.Int("targets", len(addrs)),
		zap.Int("counters", len(record.Counters)),
		zap.Int("bytes", len(payload)))
}

func (a *Agent) resolve(ctx context.Context) ([]net.IPAddr, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	addrs, err := a.resolver.LookupIPAddr(ctx, a.cfg.DestinationHost)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, ErrNoAddresses
	}
	return addrs, nil
}

// target 构造目标 URI，IPv6 字面量加方括号
func (a *Agent) target(addr net.IPAddr) string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(addr.IP.String(), strconv.Itoa(a.cfg.DestinationPort)),
		Path:   RegisterPath,
	}
	return u.String()
}

func (a *Agent) deliver(ctx context.Context, client *http.Client, target string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("registration delivery panicked", zap.String("target", target), zap.Any("panic", r))
		}
	}()

	res := send(ctx, client, target, payload)
	switch res.outcome {
	case outcomeDelivered:
		a.sink.DeliverySucceeded(target)
	case outcomeRejected:
		a.sink.DeliveryFailed(target, res.status, res.message)
	case outcomeFailed:
		a.sink.DeliveryFailed(target, NoStatus, res.message)
	case outcomeCancelled:
		a.logger.Debug("registration delivery cancelled", zap.String("target", target))
	}
}

// isCancelled 判断错误是否来自关闭过程
func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
