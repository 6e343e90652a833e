package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/supportbot/consultbot-go/internal/app"
	"github.com/supportbot/consultbot-go/pkg/logger"
	"go.uber.org/zap"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, envLoaded, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			zapLogger, err := logger.NewLoggerWithConfig(cfg.Log)
			if err != nil {
				return fmt.Errorf("初始化日志失败: %w", err)
			}
			defer zapLogger.Sync()

			if !envLoaded {
				zapLogger.Warn("未找到环境变量文件，使用系统环境变量", zap.String("path", opts.envFile))
			}
			zapLogger.Info("consult-bot 服务启动中...", zap.String("config", opts.configPath))

			application, err := app.New(cfg, zapLogger)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := application.Run(ctx); err != nil {
				zapLogger.Error("服务异常退出", zap.Error(err))
				return err
			}
			zapLogger.Info("服务已停止")
			return nil
		},
	}
}
