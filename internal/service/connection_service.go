package service

import (
	"context"
	"sync"
	"time"

	"github.com/supportbot/consultbot-go/internal/model"
	"go.uber.org/zap"
)

// ConnectionService websocket 连接登记。用于健康检查计数、空闲清理和停机时统一关闭，
// 每一帧的处理依旧是无状态的。
type ConnectionService struct {
	conns       map[string]*model.WSConnection
	mu          sync.RWMutex
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewConnectionService 创建连接登记服务
func NewConnectionService(idleTimeout time.Duration, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		conns:       make(map[string]*model.WSConnection),
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Register 登记连接
func (s *ConnectionService) Register(conn *model.WSConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn.ID] = conn
	s.logger.Info("websocket 连接已登记",
		zap.String("connId", conn.ID),
		zap.String("clientIp", conn.ClientIP))
}

// Remove 注销连接
func (s *ConnectionService) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[id]; ok {
		delete(s.conns, id)
		s.logger.Info("websocket 连接已注销", zap.String("connId", id))
	}
}

// Count 当前连接数
func (s *ConnectionService) Count() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// CloseAll 关闭所有连接（停机时调用）
func (s *ConnectionService) CloseAll() {
	s.mu.Lock()
	conns := make([]*model.WSConnection, 0, len(s.conns))
	for id, c := range s.conns {
		conns = append(conns, c)
		delete(s.conns, id)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close("server shutdown")
	}
	if len(conns) > 0 {
		s.logger.Info("已关闭全部 websocket 连接", zap.Int("count", len(conns)))
	}
}

// RunReaper 定期关闭空闲连接，直到 ctx 结束
func (s *ConnectionService) RunReaper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.reap(now)
		}
	}
}

// reap 关闭空闲超过 idleTimeout 的连接，返回关闭数量
func (s *ConnectionService) reap(now time.Time) int {
	if s.idleTimeout <= 0 {
		return 0
	}

	s.mu.Lock()
	var idle []*model.WSConnection
	for id, c := range s.conns {
		if c.IdleFor(now) > s.idleTimeout {
			idle = append(idle, c)
			delete(s.conns, id)
		}
	}
	s.mu.Unlock()

	for _, c := range idle {
		s.logger.Info("清理空闲连接", zap.String("connId", c.ID))
		_ = c.Close("idle timeout")
	}
	return len(idle)
}
