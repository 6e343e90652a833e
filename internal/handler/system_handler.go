package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/supportbot/consultbot-go/internal/corpus"
	"github.com/supportbot/consultbot-go/internal/model"
	"github.com/supportbot/consultbot-go/internal/service"
	"go.uber.org/zap"
)

const (
	// LivenessText 根路径返回的文本，托管平台和保活任务都请求这里
	LivenessText = "김진호 합격연구소 AI 서버 가동 중"
	// RobotsTxt 允许所有爬虫
	RobotsTxt = "User-agent: *\nAllow: /\n"
)

// SystemHandler 系统接口
type SystemHandler struct {
	serviceName string
	store       *corpus.Store
	conns       *service.ConnectionService
	keepAlive   *service.KeepAliveService
	allowReload bool
	logger      *zap.Logger
}

// NewSystemHandler 创建系统接口处理器。keepAlive 为 nil 表示未启用保活。
func NewSystemHandler(serviceName string, store *corpus.Store, conns *service.ConnectionService,
	keepAlive *service.KeepAliveService, allowReload bool, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		serviceName: serviceName,
		store:       store,
		conns:       conns,
		keepAlive:   keepAlive,
		allowReload: allowReload,
		logger:      logger,
	}
}

// Index 存活检查
func (h *SystemHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, LivenessText)
}

// Robots robots.txt
func (h *SystemHandler) Robots(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(RobotsTxt))
}

// Health 健康检查
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:      "UP",
		Service:     h.serviceName,
		Corpus:      h.store.Len(),
		Connections: h.conns.Count(),
		KeepAlive:   h.keepAlive.Stats(),
	})
}

// ReloadCorpus 手动重新加载语料文件
func (h *SystemHandler) ReloadCorpus(c *gin.Context) {
	if !h.allowReload {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "语料重载未开启"})
		return
	}

	if err := h.store.Reload(); err != nil {
		h.logger.Warn("手动重载语料失败", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": err.Error(),
			"count":   h.store.Len(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": h.store.Len()})
}
