package registration

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Option 注册代理可选项
type Option func(*Agent)

// WithResolver 替换目标主机名解析器
func WithResolver(r Resolver) Option {
	return func(a *Agent) {
		if r != nil {
			a.resolver = r
		}
	}
}

// WithSink 设置事件接收方
func WithSink(s EventSink) Option {
	return func(a *Agent) {
		if s != nil {
			a.sink = s
		}
	}
}

// WithLogger 设置代理自身日志
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock 替换调度时钟（测试使用 clock.NewMock）
func WithClock(c clock.Clock) Option {
	return func(a *Agent) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithTransport 替换共享的出站传输层
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Agent) {
		a.transport = rt
	}
}
