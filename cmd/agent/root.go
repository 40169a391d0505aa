package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/registration-agent/cmd/server"
	"github.com/registration-agent/pkg/catalog"
	"github.com/registration-agent/pkg/codec"
	"github.com/registration-agent/pkg/config"
	"github.com/registration-agent/pkg/logger"
	"github.com/registration-agent/pkg/registers"
	"github.com/registration-agent/pkg/registration"
	"github.com/registration-agent/pkg/signal"
	"github.com/registration-agent/pkg/util"
)

var (
	cfgFile   string
	GlobalCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "registration-agent",
	Short: "Periodically announces this process and its published counters to a registration endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		GlobalCfg, err = config.LoadConfigWithCli(cmd)
		if err != nil {
			// 统一输出错误到 stderr，不返回给 cobra
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "请检查配置文件路径或使用 -c 参数指定\n")
			os.Exit(1)
		}
		if err := runServer(cmd.Context(), GlobalCfg); err != nil {
			fmt.Fprintf(os.Stderr, "服务运行失败: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "-> Config file path | 配置文件路径")
	// 注册分组 flag
	initRegistrationFlags(rootCmd)
	initServerFlags(rootCmd)
	initMonitorFlags(rootCmd)
	initLogFlags(rootCmd)
}

// agentConfig 全局配置到注册代理配置的映射
func agentConfig(r config.RegistrationConfig) registration.Config {
	return registration.Config{
		DestinationHost: r.DestinationHost,
		DestinationPort: r.DestinationPort,
		SourceHost:      r.SourceHost,
		SourcePort:      r.SourcePort,
		MachineFunction: r.MachineFunction,
		Datacenter:      r.Datacenter,
		Interval:        r.Interval,
		DNSServer:       r.DNSServer,
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	// 1. 日志
	log, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("日志初始化失败: %w", err)
	}
	defer logger.Sync()

	// 2. banner
	util.PrintBanner(os.Stdout, "registration-agent",
		fmt.Sprintf("%s:%d -> %s:%d", cfg.Registration.SourceHost, cfg.Registration.SourcePort,
			cfg.Registration.DestinationHost, cfg.Registration.DestinationPort),
		"ColorBlue")
	logger.Info("Log initialization successful",
		zap.String("path", cfg.Log.Path),
		zap.String("level", cfg.Log.Level),
		zap.String("format", cfg.Log.Format))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 3. 指标注册器 + 主机采集器
	registry, factory, runner, err := registers.InitPromRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	// 4. 计数器目录 = 注册器当前暴露的全部指标
	cat := catalog.NewGatherer(registry, logger.Named("catalog"))

	// 5. 注册代理
	regLogger := logger.Named("registration")
	sink := registration.MultiSink{registration.NewLogSink(regLogger), factory.NewRegistrationMetrics()}
	agent, err := registration.New(agentConfig(cfg.Registration), cat, codec.Binary{},
		registration.WithSink(sink),
		registration.WithLogger(regLogger))
	if err != nil {
		return multierr.Append(fmt.Errorf("create registration agent: %w", err), runner.Shutdown(ctx))
	}

	// 6. HTTP 服务
	httpServer := server.NewHTTPServer(cfg, logger.Named("http"), registry, cat)
	if err := httpServer.Start(); err != nil {
		return multierr.Append(fmt.Errorf("start HTTP server failed: %w", err), runner.Shutdown(ctx))
	}

	if err := agent.Start(); err != nil {
		return multierr.Combine(fmt.Errorf("start registration agent: %w", err), httpServer.Shutdown(), runner.Shutdown(ctx))
	}

	// 7. 阻塞等待退出信号；关闭顺序：注册代理 → HTTP服务 → 采集器
	return signal.WaitForShutdown(ctx, log, signal.DefaultShutdownTimeout, func() error {
		shutdownCtx, done := context.WithTimeout(context.Background(), signal.DefaultShutdownTimeout)
		defer done()
		err := multierr.Combine(
			agent.Close(),
			httpServer.Shutdown(),
			runner.Shutdown(shutdownCtx),
		)
		if err == nil {
			logger.Info("all services shutdown successfully")
		}
		return err
	})
}
