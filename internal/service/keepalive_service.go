package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/supportbot/consultbot-go/internal/model"
	"go.uber.org/zap"
)

// KeepAliveService 定时请求自身的健康检查地址，防止托管平台因空闲休眠进程。
// 任何失败都只记日志，不会影响进程。
type KeepAliveService struct {
	target     string
	interval   time.Duration
	httpClient *http.Client
	cron       *cron.Cron
	logger     *zap.Logger

	lastPing atomic.Int64 // unix nano
	pings    atomic.Int64
	failures atomic.Int64
}

// NewKeepAliveService 创建保活任务
func NewKeepAliveService(selfURL, path string, interval, timeout time.Duration, logger *zap.Logger) *KeepAliveService {
	return &KeepAliveService{
		target:     strings.TrimRight(selfURL, "/") + "/" + strings.TrimLeft(path, "/"),
		interval:   interval,
		httpClient: &http.Client{Timeout: timeout},
		cron: cron.New(
			cron.WithLogger(cron.DiscardLogger),
			// 上一次还没结束就跳过，不堆积
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
	}
}

// Start 启动定时任务（非阻塞）
func (s *KeepAliveService) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.Ping(context.Background()) }); err != nil {
		return fmt.Errorf("注册保活任务失败: %w", err)
	}
	s.cron.Start()
	s.logger.Info("保活任务已启动",
		zap.String("target", s.target),
		zap.Duration("interval", s.interval))
	return nil
}

// Stop 停止定时任务，等待正在执行的请求结束或 ctx 超时
func (s *KeepAliveService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("保活任务已停止")
}

// Ping 请求一次健康检查地址，返回是否成功
func (s *KeepAliveService) Ping(ctx context.Context) bool {
	s.pings.Add(1)
	s.lastPing.Store(time.Now().UnixNano())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.target, nil)
	if err != nil {
		s.failures.Add(1)
		s.logger.Warn("保活请求创建失败", zap.Error(err))
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.failures.Add(1)
		s.logger.Warn("保活请求失败", zap.String("target", s.target), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.failures.Add(1)
		s.logger.Warn("保活请求返回异常状态",
			zap.String("target", s.target),
			zap.Int("status", resp.StatusCode))
		return false
	}

	s.logger.Debug("保活请求成功", zap.String("target", s.target))
	return true
}

// Target 保活请求地址
func (s *KeepAliveService) Target() string {
	return s.target
}

// Stats 保活统计
func (s *KeepAliveService) Stats() model.KeepAliveStats {
	if s == nil {
		return model.KeepAliveStats{}
	}
	stats := model.KeepAliveStats{
		Enabled:  true,
		Pings:    s.pings.Load(),
		Failures: s.failures.Load(),
	}
	if ts := s.lastPing.Load(); ts > 0 {
		stats.LastPing = time.Unix(0, ts).Format(time.RFC3339)
	}
	return stats
}
