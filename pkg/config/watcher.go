package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce 编辑器保存时常见的连续写入会合并为一次重载
const DefaultDebounce = 200 * time.Millisecond

// Watcher 监视预设文件，变化时重新加载
//
// 监视的是文件所在目录（编辑器常用“写临时文件再改名”的方式保存）。
// 解析失败的修改只记录日志，不会推送。
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *zap.Logger

	updates chan *EffectsConfig
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher 创建预设文件监视器
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effects path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logger,
		updates:  make(chan *EffectsConfig, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce 修改合并窗口，需在 Start 之前调用
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Updates 重新加载成功的配置
// 通道容量为 1，消费不及时时只保留最新的一份
func (w *Watcher) Updates() <-chan *EffectsConfig {
	return w.updates
}

// Start 开始监视，非阻塞
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	w.logger.Info("watching effects file", zap.String("path", w.path))
	go w.run(ctx)
	return nil
}

// Stop 停止监视并等待后台 goroutine 退出
// 未启动或重复调用都是安全的
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Debug("file watcher close", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("effects file changed", zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadEffects(w.path)
	if err != nil {
		w.logger.Warn("effects reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}
	// 丢弃尚未消费的旧配置
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	w.logger.Info("effects reloaded",
		zap.Int("regions", len(cfg.Regions)),
		zap.Int("emitters", len(cfg.Emitters)))
}
