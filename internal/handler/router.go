package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/consultbot-go/internal/middleware"
	"github.com/supportbot/consultbot-go/internal/model"
	"go.uber.org/zap"
)

// Handlers 路由用到的处理器
type Handlers struct {
	Chat      *ChatHandler
	System    *SystemHandler
	WebSocket *WebSocketHandler
}

// NewRouter 注册所有路由
func NewRouter(h Handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		recovery(logger),
		middleware.CORS(),
		middleware.RequestID(),
		middleware.AccessLog(logger),
	)

	r.GET("/", h.System.Index)
	r.HEAD("/", h.System.Index)
	r.GET("/robots.txt", h.System.Robots)
	r.POST("/chat", h.Chat.Chat)
	r.GET("/ws/chat", h.WebSocket.HandleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/health", h.System.Health)
		api.GET("/classify", h.Chat.Classify)
		api.POST("/corpus/reload", h.System.ReloadCorpus)
	}

	return r
}

// recovery panic 时记录日志，并返回和聊天接口相同结构的错误文本
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("请求处理 panic",
			zap.String("requestId", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Any("error", err))
		c.AbortWithStatusJSON(http.StatusOK, model.ChatResponse{Response: GenericErrorReply})
	})
}
