package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

// GenericErrorReply 请求体无法解析时返回的文本
const GenericErrorReply = "서버 처리 중 오류가 발생했습니다."

// ChatHandler 聊天处理器
type ChatHandler struct {
	chatService       *service.ChatService
	classifierService *service.ClassifierService
	logger            *zap.Logger
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(chatService *service.ChatService, classifierService *service.ClassifierService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService:       chatService,
		classifierService: classifierService,
		logger:            logger,
	}
}

// Chat 聊天接口，任何情况下都返回 200
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("请求体解析失败", zap.Error(err))
		c.JSON(http.StatusOK, model.ChatResponse{Response: GenericErrorReply})
		return
	}

	result := h.chatService.HandleUserMessage(c.Request.Context(), req)
	c.JSON(http.StatusOK, model.ChatResponse{Response: result.Response})
}

// Classify 只做分类不调用模型，排查分类问题用
func (h *ChatHandler) Classify(c *gin.Context) {
	message := c.Query("message")
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message 参数不能为空"})
		return
	}

	category := h.classifierService.Classify(message)
	resp := gin.H{"category": category}
	if category == model.CategoryConsulting {
		resp["subCase"] = h.classifierService.ResolveSubCase(message, c.Query("context"))
	}
	c.JSON(http.StatusOK, resp)
}
