package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/supportbot/consultbot-go/internal/client"
	"github.com/supportbot/consultbot-go/internal/corpus"
	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/prompt"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

func newClassifyCommand(opts *rootOptions) *cobra.Command {
	var callerContext string
	cmd := &cobra.Command{
		Use:   "classify <message>",
		Short: "离线查看消息的分类结果",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			classifier := service.NewClassifierService()

			category := classifier.Classify(message)
			fmt.Fprintf(cmd.OutOrStdout(), "category: %s\n", category)
			if category == model.CategoryConsulting {
				fmt.Fprintf(cmd.OutOrStdout(), "subCase:  %s\n", classifier.ResolveSubCase(message, callerContext))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&callerContext, "context", "", "招聘公告上下文")
	return cmd
}

func newPromptCommand(opts *rootOptions) *cobra.Command {
	var (
		callerContext string
		withSearch    bool
	)
	cmd := &cobra.Command{
		Use:   "prompt <message>",
		Short: "打印为消息构建的提示词（不调用模型）",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			logger := zap.NewNop()
			message := strings.Join(args, " ")

			store := corpus.NewStore(cfg.Corpus.Files, logger)
			if err := store.Load(); err != nil {
				cmd.PrintErrf("warning: %v\n", err)
			}

			var searcher service.WebSearcher
			if withSearch {
				searcher = client.NewWebSearchClient(cfg.Search.Endpoint, cfg.Search.Timeout, logger)
			}
			classifier := service.NewClassifierService()
			assembler := service.NewContextService(searcher, store, nil, cfg.Search.MaxResults, cfg.Search.Timeout, logger)

			category := classifier.Classify(message)
			if category == model.CategoryInsult {
				fmt.Fprintf(cmd.OutOrStdout(), "category: %s (不调用模型)\n", category)
				return nil
			}
			var subCase model.ConsultingSubCase
			if category == model.CategoryConsulting {
				subCase = classifier.ResolveSubCase(message, callerContext)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Search.Timeout+time.Second)
			defer cancel()
			resolved := assembler.Assemble(ctx, category, callerContext, message)

			pair, _ := prompt.Build(category, subCase, resolved, message)
			fmt.Fprintf(cmd.OutOrStdout(), "category:    %s\n", category)
			fmt.Fprintf(cmd.OutOrStdout(), "subCase:     %s\n", subCase)
			fmt.Fprintf(cmd.OutOrStdout(), "maxTokens:   %d\n", pair.MaxTokens)
			fmt.Fprintf(cmd.OutOrStdout(), "temperature: %.1f\n", pair.Temperature)
			fmt.Fprintf(cmd.OutOrStdout(), "\n--- system ---\n%s\n", pair.SystemPrompt)
			fmt.Fprintf(cmd.OutOrStdout(), "\n--- user ---\n%s\n", pair.UserPrompt)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerContext, "context", "", "招聘公告上下文")
	cmd.Flags().BoolVar(&withSearch, "search", false, "SEARCH 分类时实际请求网页搜索")
	return cmd
}
