package cli

import (
	"github.com/spf13/cobra"
	"github.com/supportbot/consultbot-go/internal/config"
)

const version = "1.0.0"

// rootOptions 全局参数
type rootOptions struct {
	configPath string
	envFile    string
}

// NewRoot 创建根命令
func NewRoot() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "consult-bot",
		Short:         "김진호 합격연구소 AI 상담 서버",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "configs/consult-bot.yaml", "配置文件路径")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "config.env", "环境变量文件路径")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newClassifyCommand(opts))
	root.AddCommand(newPromptCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// loadConfig 先加载 env 文件再读配置，env 文件缺失不算错误
func (o *rootOptions) loadConfig() (*config.Config, bool, error) {
	envLoaded := config.LoadEnvFile(o.envFile) == nil
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, envLoaded, err
	}
	return cfg, envLoaded, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本号",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
