package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/supportbot/consultbot-go/internal/middleware"
	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	// 和 HTTP 接口一样允许任意来源
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler WebSocket 处理器。每一帧都是一次独立的聊天请求。
type WebSocketHandler struct {
	conns       *service.ConnectionService
	chatService *service.ChatService
	logger      *zap.Logger
}

// NewWebSocketHandler 创建 WebSocket 处理器
func NewWebSocketHandler(conns *service.ConnectionService, chatService *service.ChatService, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		conns:       conns,
		chatService: chatService,
		logger:      logger,
	}
}

// HandleWebSocket WebSocket 连接入口
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket 升级失败", zap.Error(err))
		return
	}

	// 连接 ID 由服务端生成，客户端带来的请求 ID 只用于日志关联
	connID := uuid.New().String()
	requestID := middleware.GetRequestID(c)
	ws := model.NewWSConnection(connID, c.ClientIP(), conn)
	h.conns.Register(ws)
	h.logger.Info("WebSocket 连接建立", zap.String("connId", connID), zap.String("requestId", requestID))
	defer func() {
		h.conns.Remove(connID)
		conn.Close()
	}()

	ctx := c.Request.Context()
	for frame := 1; ; frame++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket 读取错误", zap.String("connId", connID), zap.Error(err))
			}
			break
		}
		ws.Touch()

		resp := h.handleFrame(service.WithRequestID(ctx, fmt.Sprintf("%s-%d", requestID, frame)), data)
		if err := ws.WriteJSON(resp); err != nil {
			h.logger.Warn("WebSocket 写入失败", zap.String("connId", connID), zap.Error(err))
			break
		}
	}

	h.logger.Info("WebSocket 连接断开", zap.String("connId", connID))
}

// handleFrame 处理单帧消息
func (h *WebSocketHandler) handleFrame(ctx context.Context, data []byte) model.ChatResponse {
	var req model.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Warn("WebSocket 消息解析失败", zap.Error(err))
		return model.ChatResponse{Response: GenericErrorReply}
	}
	result := h.chatService.HandleUserMessage(ctx, req)
	return model.ChatResponse{Response: result.Response}
}
