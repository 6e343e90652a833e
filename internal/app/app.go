package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/supportbot/consultbot-go/internal/cache"
	"github.com/supportbot/consultbot-go/internal/client"
	"github.com/supportbot/consultbot-go/internal/config"
	"github.com/supportbot/consultbot-go/internal/corpus"
	"github.com/supportbot/consultbot-go/internal/handler"
	"github.com/supportbot/consultbot-go/internal/service"
	"github.com/supportbot/consultbot-go/pkg/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	reapInterval    = time.Minute
)

// App 组装好的服务进程
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *corpus.Store
	watcher    *corpus.Watcher
	conns      *service.ConnectionService
	keepAlive  *service.KeepAliveService
	redis      *goredis.Client
	router     *gin.Engine
	httpServer *http.Server
}

// New 按配置组装所有组件。外部依赖（语料文件、Redis）不可用时降级运行，不返回错误。
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	gin.SetMode(cfg.Server.Mode)
	a := &App{cfg: cfg, logger: logger}

	a.store = corpus.NewStore(cfg.Corpus.Files, logger)
	if err := a.store.Load(); err != nil {
		logger.Warn("语料加载失败，使用默认数据", zap.Error(err))
	}
	if cfg.Corpus.Watch {
		w, err := corpus.NewWatcher(a.store, cfg.Corpus.Debounce, logger)
		if err != nil {
			logger.Warn("语料文件监听不可用", zap.Error(err))
		} else {
			a.watcher = w
		}
	}

	if cfg.Inference.APIKey == "" {
		logger.Warn("未配置 HF_TOKEN，模型调用将失败并返回降级文本")
	}
	llm := client.NewInferenceClient(cfg.Inference.BaseURL, cfg.Inference.APIKey, cfg.Inference.Model, cfg.Inference.Timeout, logger)
	searcher := client.NewWebSearchClient(cfg.Search.Endpoint, cfg.Search.Timeout, logger)

	classifier := service.NewClassifierService()
	assembler := service.NewContextService(searcher, a.store, a.newSearchCache(), cfg.Search.MaxResults, cfg.Search.Timeout, logger)
	inference := service.NewInferenceService(llm, cfg.Inference.Timeout, logger)
	chat := service.NewChatService(classifier, assembler, inference, logger)
	a.conns = service.NewConnectionService(cfg.Server.WSIdleTimeout, logger)

	if cfg.KeepAlive.Enabled && cfg.KeepAlive.SelfURL != "" {
		a.keepAlive = service.NewKeepAliveService(cfg.KeepAlive.SelfURL, cfg.KeepAlive.Path,
			cfg.KeepAlive.Interval, cfg.KeepAlive.Timeout, logger)
	}

	a.router = handler.NewRouter(handler.Handlers{
		Chat:      handler.NewChatHandler(chat, classifier, logger),
		System:    handler.NewSystemHandler(cfg.Server.Name, a.store, a.conns, a.keepAlive, cfg.Corpus.AllowReload, logger),
		WebSocket: handler.NewWebSocketHandler(a.conns, chat, logger),
	}, logger)

	a.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("服务组装完成",
		zap.String("model", llm.Model()),
		zap.Int("corpus", a.store.Len()),
		zap.String("cache", cfg.Cache.Backend),
		zap.Bool("keepAlive", a.keepAlive != nil))
	return a, nil
}

// Router HTTP 路由
func (a *App) Router() http.Handler {
	return a.router
}

// Run 启动 HTTP 服务和后台任务，阻塞到 ctx 结束或任一组件出错
func (a *App) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if a.watcher != nil {
		group.Go(func() error {
			// 语料监听出错只影响自动重载，不能让 HTTP 服务跟着退出
			if err := a.watcher.Run(groupCtx); err != nil {
				a.logger.Warn("语料文件监听退出", zap.Error(err))
			}
			return nil
		})
	}

	group.Go(func() error {
		a.conns.RunReaper(groupCtx, reapInterval)
		return nil
	})

	if a.keepAlive != nil {
		if err := a.keepAlive.Start(); err != nil {
			a.logger.Warn("保活任务启动失败", zap.Error(err))
		}
	}

	group.Go(func() error {
		a.logger.Info("服务启动成功", zap.String("addr", a.httpServer.Addr))
		err := a.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-groupCtx.Done()
		a.logger.Info("服务停止中...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if a.keepAlive != nil {
			a.keepAlive.Stop(shutdownCtx)
		}
		// Shutdown 不会关闭被劫持的 websocket 连接
		a.conns.CloseAll()
		return a.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// Close 释放外部连接
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// newSearchCache 根据配置选择搜索缓存，Redis 不可用时退回进程内缓存
func (a *App) newSearchCache() cache.SearchCache {
	switch a.cfg.Cache.Backend {
	case "none":
		return cache.Nop{}
	case "redis":
		rdb, err := redis.NewRedisClient(a.cfg.Redis)
		if err != nil {
			a.logger.Warn("Redis 不可用，搜索缓存改用进程内缓存", zap.Error(err))
			return cache.NewMemoryCache(a.cfg.Cache.TTL)
		}
		a.redis = rdb
		a.logger.Info("Redis 连接成功", zap.String("addr", a.cfg.Redis.Addr()))
		return cache.NewRedisCache(rdb, a.cfg.Cache.TTL, a.logger)
	default:
		return cache.NewMemoryCache(a.cfg.Cache.TTL)
	}
}
