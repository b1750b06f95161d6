// Package termhost 在终端中运行展示页
//
// tcell 的事件读取是阻塞的，由独立 goroutine 转发到渲染循环；
// 展示页只在渲染循环里访问。两个 goroutine 由 errgroup 管理，任一方退出时另一方随之结束。
package termhost

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/decker502/studyjam/pkg/config"
	"github.com/decker502/studyjam/pkg/scenes"
)

// errQuit 用户主动退出
var errQuit = errors.New("quit")

// Options 宿主参数
type Options struct {
	// CellWidth/CellHeight 一个字符格对应的像素，默认 8x16
	CellWidth  float64
	CellHeight float64
	FPS        int
	Logger     *zap.Logger
	Updates    <-chan *config.EffectsConfig
}

// Host 终端宿主
type Host struct {
	screen   tcell.Screen
	showcase *scenes.Showcase
	opts     Options
	logger   *zap.Logger

	buttons tcell.ButtonMask
	start   time.Time
	now     time.Duration
}

// ViewportSize 终端尺寸换算成像素视口
func ViewportSize(screen tcell.Screen, opts Options) (float64, float64) {
	opts = opts.withDefaults()
	w, h := screen.Size()
	return float64(w) * opts.CellWidth, float64(h) * opts.CellHeight
}

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// New 创建宿主，screen 需已 Init
func New(screen tcell.Screen, showcase *scenes.Showcase, opts Options) *Host {
	opts = opts.withDefaults()
	h := &Host{screen: screen, showcase: showcase, opts: opts, logger: opts.Logger}
	h.resize()
	return h
}

func (h *Host) resize() {
	w, hgt := ViewportSize(h.screen, h.opts)
	h.showcase.Resize(w, hgt)
}

// toPixels 字符格中心的像素坐标
func (h *Host) toPixels(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * h.opts.CellWidth, (float64(y) + 0.5) * h.opts.CellHeight
}

// Run 运行到 ctx 结束或用户退出，返回前调用 screen.Fini
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse()
	h.screen.HideCursor()

	g, ctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 64)

	g.Go(func() error {
		for {
			// Fini 之后返回 nil
			ev := h.screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		defer h.screen.Fini()
		return h.loop(ctx, events)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

func (h *Host) loop(ctx context.Context, events <-chan tcell.Event) error {
	ticker := time.NewTicker(time.Second / time.Duration(h.opts.FPS))
	defer ticker.Stop()
	h.start = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !h.Handle(ev) {
				h.logger.Info("terminal host quit")
				return errQuit
			}

		case cfg := <-h.opts.Updates:
			if err := h.showcase.Reload(cfg); err != nil {
				h.logger.Warn("hot reload rejected", zap.Error(err))
			}

		case <-ticker.C:
			h.Frame(time.Since(h.start))
			h.Draw()
		}
	}
}

// Handle 处理一个终端事件，返回 false 表示退出
func (h *Host) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev)

	case *tcell.EventMouse:
		x, y := ev.Position()
		px, py := h.toPixels(x, y)
		h.showcase.MovePointer(px, py)

		buttons := ev.Buttons()
		pressed := buttons &^ h.buttons
		h.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
		if pressed&tcell.Button1 != 0 {
			h.showcase.Click(px, py)
		}
		if pressed&tcell.Button2 != 0 {
			h.showcase.AltClick()
		}
		if buttons&tcell.WheelDown != 0 {
			h.showcase.ScrollBy(3 * h.opts.CellHeight)
		}
		if buttons&tcell.WheelUp != 0 {
			h.showcase.ScrollBy(-3 * h.opts.CellHeight)
		}

	case *tcell.EventResize:
		h.resize()
		h.screen.Sync()
	}
	return true
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	page := h.showcase.Viewport().Height * 0.9
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyPgDn:
		h.showcase.ScrollBy(page)
	case tcell.KeyPgUp:
		h.showcase.ScrollBy(-page)
	case tcell.KeyDown:
		h.showcase.ScrollBy(h.opts.CellHeight)
	case tcell.KeyUp:
		h.showcase.ScrollBy(-h.opts.CellHeight)
	case tcell.KeyHome:
		h.showcase.ScrollTo(0)
	case tcell.KeyEnd:
		h.showcase.ScrollTo(h.showcase.MaxScroll())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			h.showcase.ScrollBy(page)
		case 'x':
			h.showcase.AltClick()
		}
	}
	return true
}

// Frame 推进引擎
func (h *Host) Frame(now time.Duration) {
	h.now = now
	h.showcase.Frame(now)
}
