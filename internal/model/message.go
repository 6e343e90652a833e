package model

// ChatRequest 聊天请求（/chat 与 /ws/chat 共用）
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"` // 当前浏览的招聘公告文本，空字符串表示没有
}

// ChatResponse 聊天响应
type ChatResponse struct {
	Response string `json:"response"`
}

// HasContext 是否携带了公告上下文
func (r ChatRequest) HasContext() bool {
	return r.Context != ""
}

// PromptPair 单次请求构建的提示词
type PromptPair struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// InferenceResult 推理结果：要么是模型回答，要么是降级文本，不会是未处理的错误
type InferenceResult struct {
	Text     string
	Fallback bool
	Err      error // 仅用于日志
}

// ChatResult 聊天服务处理结果
type ChatResult struct {
	Response string
	Category IntentCategory
	SubCase  ConsultingSubCase
	Fallback bool
	State    ChatState
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status      string         `json:"status"`
	Service     string         `json:"service"`
	Corpus      int            `json:"corpus"`
	Connections int            `json:"connections"`
	KeepAlive   KeepAliveStats `json:"keepAlive"`
}

// KeepAliveStats 保活任务统计
type KeepAliveStats struct {
	Enabled  bool   `json:"enabled"`
	LastPing string `json:"lastPing,omitempty"`
	Pings    int64  `json:"pings"`
	Failures int64  `json:"failures"`
}
