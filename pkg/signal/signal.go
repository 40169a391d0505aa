package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout 收到信号后等待关闭逻辑的最长时间
const DefaultShutdownTimeout = 10 * time.Second

// WaitForShutdown 阻塞直到收到 SIGINT/SIGTERM 或 ctx 结束，然后在超时内执行 shutdownFunc
func WaitForShutdown(ctx context.Context, logger *zap.Logger, timeout time.Duration, shutdownFunc func() error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("service running, waiting for SIGINT/SIGTERM...")
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("context finished, shutting down", zap.Error(ctx.Err()))
	}
	return runWithTimeout(logger, timeout, shutdownFunc)
}

func runWithTimeout(logger *zap.Logger, timeout time.Duration, shutdownFunc func() error) error {
	done := make(chan error, 1)
	go func() { done <- shutdownFunc() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
		logger.Info("graceful shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		logger.Warn("shutdown timeout exceeded", zap.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}
