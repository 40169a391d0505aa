package registration

import (
	"errors"

	"go.uber.org/zap"
)

// EventSink 注册事件接收方。实现不得阻塞，也不应 panic。
type EventSink interface {
	ResolutionFailed(host string, err error)
	DeliverySucceeded(target string)
	DeliveryFailed(target string, status int, message string)
}

// MultiSink 将事件依次分发给多个接收方
type MultiSink []EventSink

func (m MultiSink) ResolutionFailed(host string, err error) {
	for _, s := range m {
		s.ResolutionFailed(host, err)
	}
}

func (m MultiSink) DeliverySucceeded(target string) {
	for _, s := range m {
		s.DeliverySucceeded(target)
	}
}

func (m MultiSink) DeliveryFailed(target string, status int, message string) {
	for _, s := range m {
		s.DeliveryFailed(target, status, message)
	}
}

// LogSink 将注册事件写入 zap 日志
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink 创建日志接收方，logger 为 nil 时丢弃
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (l *LogSink) ResolutionFailed(host string, err error) {
	fields := []zap.Field{zap.String("host", host), zap.Error(err)}
	if errors.Is(err, ErrNoAddresses) {
		l.logger.Warn("registration destination has no addresses", fields...)
		return
	}
	l.logger.Error("registration destination resolution failed", fields...)
}

func (l *LogSink) DeliverySucceeded(target string) {
	l.logger.Debug("registration delivered", zap.String("target", target))
}

func (l *LogSink) DeliveryFailed(target string, status int, message string) {
	l.logger.Warn("registration delivery failed",
		zap.String("target", target),
		zap.Int("status", status),
		zap.String("message", message))
}
