package service

import (
	"context"
	"time"

	"github.com/supportbot/consultbot-go/internal/model"
	"go.uber.org/zap"
)

// FallbackPrefix 推理失败时返回给用户的文本前缀，后面跟简短原因
const FallbackPrefix = "⚠ AI 서버 연결 지연: "

// ChatCompleter 文本生成能力
type ChatCompleter interface {
	SimpleChat(ctx context.Context, systemPrompt, userMessage string, maxTokens int, temperature float64) (string, error)
}

// InferenceService 推理网关。调用方是同步 HTTP 请求，必须总能拿到一段文本，所以这里从不返回错误。
type InferenceService struct {
	llm     ChatCompleter
	timeout time.Duration
	logger  *zap.Logger
}

// NewInferenceService 创建推理网关
func NewInferenceService(llm ChatCompleter, timeout time.Duration, logger *zap.Logger) *InferenceService {
	return &InferenceService{
		llm:     llm,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate 单次调用文本生成服务，失败时返回降级文本
func (s *InferenceService) Generate(ctx context.Context, pair model.PromptPair) model.InferenceResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.llm.SimpleChat(ctx, pair.SystemPrompt, pair.UserPrompt, pair.MaxTokens, pair.Temperature)
	if err != nil {
		s.logger.Error("LLM 调用失败",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return model.InferenceResult{
			Text:     FallbackPrefix + err.Error(),
			Fallback: true,
			Err:      err,
		}
	}

	s.logger.Debug("LLM 调用成功",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("maxTokens", pair.MaxTokens))
	return model.InferenceResult{Text: text}
}
