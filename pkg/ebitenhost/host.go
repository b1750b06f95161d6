// Package ebitenhost 在 ebiten 窗口中运行展示页
//
// 每个 tick 轮询一次输入，转交给展示页，再按 tick 计数推进引擎时间；
// Draw 只读取展示页的快照。
package ebitenhost

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/decker502/studyjam/pkg/config"
	"github.com/decker502/studyjam/pkg/scenes"
)

// DefaultWheelStep 每格滚轮滚动的像素
const DefaultWheelStep = 60.0

// Input 输入源
type Input interface {
	CursorPosition() (x, y int)
	Wheel() (dx, dy float64)
	MouseJustPressed(button ebiten.MouseButton) bool
	KeyJustPressed(key ebiten.Key) bool
}

// ebitenInput 读取 ebiten 的全局输入状态
type ebitenInput struct{}

func (ebitenInput) CursorPosition() (int, int) { return ebiten.CursorPosition() }
func (ebitenInput) Wheel() (float64, float64)  { return ebiten.Wheel() }
func (ebitenInput) MouseJustPressed(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(b)
}
func (ebitenInput) KeyJustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// Options 宿主参数
type Options struct {
	Title     string
	TPS       int
	WheelStep float64
	Input     Input
	Logger    *zap.Logger
	// Updates 热重载的预设（通常来自 config.Watcher）
	Updates <-chan *config.EffectsConfig
}

// Host 实现 ebiten.Game
type Host struct {
	showcase *scenes.Showcase
	input    Input
	logger   *zap.Logger
	updates  <-chan *config.EffectsConfig

	title     string
	tps       int
	wheelStep float64

	ticks      int64
	lastX      int
	lastY      int
	hasPointer bool
	hud        bool

	renderer *renderer
}

// New 创建宿主
func New(showcase *scenes.Showcase, opts Options) *Host {
	if opts.TPS <= 0 {
		opts.TPS = ebiten.DefaultTPS
	}
	if opts.WheelStep == 0 {
		opts.WheelStep = DefaultWheelStep
	}
	if opts.Input == nil {
		opts.Input = ebitenInput{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "studyjam"
	}
	return &Host{
		showcase:  showcase,
		input:     opts.Input,
		logger:    opts.Logger,
		updates:   opts.Updates,
		title:     opts.Title,
		tps:       opts.TPS,
		wheelStep: opts.WheelStep,
		hud:       true,
		renderer:  newRenderer(),
	}
}

// Now 引擎时间，由 tick 计数换算
func (h *Host) Now() time.Duration {
	return time.Duration(h.ticks) * time.Second / time.Duration(h.tps)
}

// Update 处理输入并推进一帧
func (h *Host) Update() error {
	select {
	case cfg := <-h.updates:
		if err := h.showcase.Reload(cfg); err != nil {
			h.logger.Warn("hot reload rejected", zap.Error(err))
		}
	default:
	}

	if h.input.KeyJustPressed(ebiten.KeyEscape) || h.input.KeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if h.input.KeyJustPressed(ebiten.KeyH) {
		h.hud = !h.hud
	}

	x, y := h.input.CursorPosition()
	if !h.hasPointer || x != h.lastX || y != h.lastY {
		h.showcase.MovePointer(float64(x), float64(y))
		h.lastX, h.lastY, h.hasPointer = x, y, true
	}

	if _, dy := h.input.Wheel(); dy != 0 {
		h.showcase.ScrollBy(-dy * h.wheelStep)
	}
	switch {
	case h.input.KeyJustPressed(ebiten.KeyPageDown), h.input.KeyJustPressed(ebiten.KeySpace):
		h.showcase.ScrollBy(h.showcase.Viewport().Height * 0.9)
	case h.input.KeyJustPressed(ebiten.KeyPageUp):
		h.showcase.ScrollBy(-h.showcase.Viewport().Height * 0.9)
	case h.input.KeyJustPressed(ebiten.KeyHome):
		h.showcase.ScrollTo(0)
	case h.input.KeyJustPressed(ebiten.KeyEnd):
		h.showcase.ScrollTo(h.showcase.MaxScroll())
	}

	if h.input.MouseJustPressed(ebiten.MouseButtonLeft) {
		h.showcase.Click(float64(x), float64(y))
	}
	if h.input.MouseJustPressed(ebiten.MouseButtonRight) {
		h.showcase.AltClick()
	}

	h.ticks++
	h.showcase.Frame(h.Now())
	return nil
}

// Draw 绘制快照
func (h *Host) Draw(screen *ebiten.Image) {
	snap := h.showcase.Snapshot()
	h.renderer.draw(screen, snap)
	if h.hud {
		h.renderer.drawHUD(screen, snap, ebiten.ActualFPS())
	}
}

// Layout 逻辑尺寸跟随窗口，窗口变化时重新排版
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.showcase.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run 打开窗口并阻塞到窗口关闭
func (h *Host) Run() error {
	vp := h.showcase.Viewport()
	ebiten.SetWindowSize(int(vp.Width), int(vp.Height))
	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(h.tps)

	h.logger.Info("window opened", zap.Int("width", int(vp.Width)), zap.Int("height", int(vp.Height)))
	if err := ebiten.RunGame(h); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
