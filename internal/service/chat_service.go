package service

import (
	"context"
	"unicode/utf8"

	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/prompt"
	"go.uber.org/zap"
)

// InsultReply 辱骂消息的固定拒绝回复
const InsultReply = "🚫 욕설이나 비매너 채팅은 AI가 답변을 거부합니다. 김진호 합격연구소는 예의를 중요시합니다."

// ChatService 聊天服务：分类 → 组装上下文 → 构建提示词 → 调用模型
type ChatService struct {
	classifier *ClassifierService
	assembler  *ContextService
	inference  *InferenceService
	logger     *zap.Logger
}

// NewChatService 创建聊天服务
func NewChatService(classifier *ClassifierService, assembler *ContextService, inference *InferenceService, logger *zap.Logger) *ChatService {
	return &ChatService{
		classifier: classifier,
		assembler:  assembler,
		inference:  inference,
		logger:     logger,
	}
}

// HandleUserMessage 处理用户消息。每个请求独立走一遍状态机，不保存任何状态。
func (s *ChatService) HandleUserMessage(ctx context.Context, req model.ChatRequest) model.ChatResult {
	// 请求进行中不可取消，客户端断开也要把这次外部调用做完（由超时兜底）
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(zap.String("requestId", RequestIDFrom(ctx)))

	result := model.ChatResult{State: model.StateReceived}
	log.Info("收到用户消息",
		zap.String("message", preview(req.Message, 50)),
		zap.Int("contextLength", utf8.RuneCountInString(req.Context)))

	result.Category = s.classifier.Classify(req.Message)
	result.State = model.StateClassified
	log.Debug("状态变更", zap.String("state", string(result.State)), zap.String("category", string(result.Category)))

	if result.Category == model.CategoryInsult {
		result.Response = InsultReply
		log.Info("拒绝辱骂消息")
		return result
	}

	if result.Category == model.CategoryConsulting {
		result.SubCase = s.classifier.ResolveSubCase(req.Message, req.Context)
	}

	resolved := s.assembler.Assemble(ctx, result.Category, req.Context, req.Message)
	result.State = model.StateContextResolved
	log.Debug("状态变更",
		zap.String("state", string(result.State)),
		zap.String("subCase", string(result.SubCase)),
		zap.Int("resolvedLength", utf8.RuneCountInString(resolved)))

	pair, _ := prompt.Build(result.Category, result.SubCase, resolved, req.Message)
	result.State = model.StatePrompted
	log.Debug("状态变更", zap.String("state", string(result.State)), zap.Int("maxTokens", pair.MaxTokens))

	answer := s.inference.Generate(ctx, pair)
	result.Fallback = answer.Fallback
	result.Response = answer.Text
	if !answer.Fallback {
		result.Response = prompt.EnsureClosing(result.Category, result.SubCase, answer.Text)
	}
	result.State = model.StateAnswered

	log.Info("回复已生成",
		zap.String("category", string(result.Category)),
		zap.Bool("fallback", result.Fallback),
		zap.String("response", preview(result.Response, 30)))
	return result
}

// preview 日志里只打印前 n 个字符
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
