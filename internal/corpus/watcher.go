package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher 监听语料文件变化，变化后重新加载
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher 创建语料文件监听器
func NewWatcher(store *Store, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}

	files := make(map[string]struct{}, len(store.Paths()))
	for _, p := range store.Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		files[abs] = struct{}{}
	}

	return &Watcher{
		store:    store,
		watcher:  fw,
		files:    files,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Run 阻塞运行直到 ctx 结束。监听的是文件所在目录，这样文件被替换（rename）后仍能收到事件。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	watched := 0
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			// 监听失败不影响服务，只是失去自动重载
			w.logger.Warn("监听目录失败，已跳过", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		w.logger.Warn("没有可监听的语料目录，自动重载已关闭")
		<-ctx.Done()
		return nil
	}
	w.logger.Info("语料文件监听已启动", zap.Int("dirs", watched))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("语料文件监听已停止")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("语料文件变化",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			// 编辑器保存时会连续触发多个事件，合并成一次重载
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			if err := w.store.Reload(); err != nil {
				w.logger.Warn("语料重载失败", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("文件监听错误", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		abs = event.Name
	}
	_, ok := w.files[abs]
	return ok
}
