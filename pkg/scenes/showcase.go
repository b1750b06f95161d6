// Package scenes 展示页：把预设实例化到一个可滚动的虚拟页面上
//
// 宿主（ebiten 窗口、终端、无界面模拟）只负责把输入转交给 Showcase、
// 每帧调用 Frame，再根据 Snapshot 绘制。所有调用都应在同一个 goroutine 上。
package scenes

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/decker502/studyjam/pkg/config"
	"github.com/decker502/studyjam/pkg/motion"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/textfx"
	"github.com/decker502/studyjam/pkg/utils"
)

const (
	// DefaultPageHeight 虚拟页面高度
	DefaultPageHeight = 4000.0

	tiltCopies  = 3
	cardWidth   = 220.0
	cardHeight  = 140.0
	cellWidth   = 260.0
	cellHeight  = 220.0
	flowTop     = 420.0
	bandTop     = 600.0
	bandSpacing = 700.0
	bandHeight  = 60.0
)

// Headline 和换词器的文案
var (
	HeadlineText = "Motion that follows you"
	SwapWords    = []string{"fluid", "magnetic", "springy", "alive"}
)

// Options 展示页参数
type Options struct {
	Width, Height float64
	PageHeight    float64
	Seed          int64
	Logger        *zap.Logger
}

// Item 页面上的一个动效区域
type Item struct {
	Name   string
	Kind   string
	Region *motion.Region
	Page   utils.Rect // 页面坐标
	Fixed  bool       // 固定在视口上，不随滚动
}

// mote 磁吸容器周围的光点，绘制时叠加在容器的位移上
type mote struct {
	owner  *Item
	region *motion.Region
	anchor utils.Vec2
}

// MotesEmitter 光点在 Snapshot.Dots 中使用的名称
const MotesEmitter = "motes"

// Showcase 展示页
type Showcase struct {
	cfg    *config.EffectsConfig
	opts   Options
	logger *zap.Logger

	surface  *signal.ManualSurface
	engine   *motion.Engine
	items    []*Item
	motes    []*mote
	emitters map[string]*motion.Emitter
	kinds    map[string]string // emitter name -> kind
	headline *textfx.Typewriter
	swapper  *textfx.WordSwapper

	scrollY    float64
	pointer    utils.Vec2
	hasPointer bool
	toggled    bool
	now        time.Duration
}

// NewShowcase 根据预设创建展示页
func NewShowcase(cfg *config.EffectsConfig, opts Options) (*Showcase, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, &motion.ConfigError{Field: "viewport", Value: [2]float64{opts.Width, opts.Height}, Reason: "must be positive"}
	}
	if opts.PageHeight == 0 {
		opts.PageHeight = DefaultPageHeight
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Showcase{opts: opts, logger: opts.Logger}
	if err := s.build(cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Showcase) build(cfg *config.EffectsConfig) error {
	s.cfg = cfg
	s.surface = signal.NewManualSurface()
	engineOpts := append(cfg.Engine.Options(),
		motion.WithLogger(s.logger),
		motion.WithRandom(utils.NewSeededRandom(s.opts.Seed)))
	s.engine = motion.NewEngine(s.surface, engineOpts...)
	s.items = nil
	s.motes = nil
	s.emitters = make(map[string]*motion.Emitter)
	s.kinds = make(map[string]string)

	var flow, bands int
	for _, name := range sortedKeys(cfg.Regions) {
		preset := cfg.Regions[name]
		copies := 1
		if preset.Kind == "tilt" {
			copies = tiltCopies
		}
		for i := 0; i < copies; i++ {
			key := name
			if copies > 1 {
				key = fmt.Sprintf("%s-%d", name, i+1)
			}
			spec, err := preset.Spec(key)
			if err != nil {
				return fmt.Errorf("region %q: %w", name, err)
			}
			r, err := s.engine.CreateRegion(spec)
			if err != nil {
				return fmt.Errorf("region %q: %w", name, err)
			}
			item := &Item{Name: key, Kind: preset.Kind, Region: r}
			item.Page, item.Fixed = s.place(preset.Kind, &flow, &bands)
			s.items = append(s.items, item)
			if preset.Kind == "magnetic" {
				if err := s.addMotes(item); err != nil {
					return fmt.Errorf("region %q: %w", name, err)
				}
			}
		}
	}

	viewport := s.Viewport()
	for _, name := range sortedKeys(cfg.Emitters) {
		preset := cfg.Emitters[name]
		ec, err := preset.Config(name, viewport)
		if err != nil {
			return fmt.Errorf("emitter %q: %w", name, err)
		}
		em, err := s.engine.CreateEmitter(ec)
		if err != nil {
			return fmt.Errorf("emitter %q: %w", name, err)
		}
		s.emitters[name] = em
		s.kinds[name] = preset.Kind
	}

	opts := textfx.DefaultTypewriterOptions()
	opts.Loop = true
	opts.Delay = 400 * time.Millisecond
	tw, err := textfx.NewTypewriter(HeadlineText, opts)
	if err != nil {
		return err
	}
	s.headline = tw.Attach(s.engine.Hub())
	ws, err := textfx.NewWordSwapper(SwapWords, textfx.DefaultSwapInterval)
	if err != nil {
		return err
	}
	s.swapper = ws.Attach(s.engine.Hub())

	// 新引擎从宿主最后的输入状态开始
	if s.hasPointer {
		s.surface.MovePointer(s.pointer.X, s.pointer.Y)
	}
	s.surface.Scroll(s.scrollY)
	s.layout()

	s.logger.Info("showcase built",
		zap.Int("regions", len(s.items)),
		zap.Int("emitters", len(s.emitters)))
	return nil
}

func (s *Showcase) addMotes(owner *Item) error {
	for _, m := range motion.Motes(owner.Name, motion.MoteCount) {
		r, err := s.engine.CreateRegion(m.Spec)
		if err != nil {
			return err
		}
		s.motes = append(s.motes, &mote{owner: owner, region: r, anchor: m.Anchor})
	}
	return nil
}

// place 按类型分配页面位置
func (s *Showcase) place(kind string, flow, bands *int) (utils.Rect, bool) {
	w := s.opts.Width
	switch kind {
	case "scrollProgress":
		return utils.Rect{Width: w, Height: 4}, true
	case "parallax":
		y := bandTop + float64(*bands)*bandSpacing
		*bands++
		return utils.Rect{Y: y, Width: w, Height: bandHeight}, false
	case "magnetic":
		return utils.Rect{X: w/2 - 150, Y: 140, Width: 300, Height: 180}, false
	default:
		cols := int((w - 40) / cellWidth)
		if cols < 1 {
			cols = 1
		}
		col, row := *flow%cols, *flow/cols
		*flow++
		return utils.Rect{
			X:      40 + float64(col)*cellWidth,
			Y:      flowTop + float64(row)*cellHeight,
			Width:  cardWidth,
			Height: cardHeight,
		}, false
	}
}

// layout 把页面坐标换算到视口并更新各区域的测量结果和可见性
func (s *Showcase) layout() {
	viewport := s.Viewport()
	for _, item := range s.items {
		rect := s.toViewport(item)
		if err := item.Region.SetBounds(rect); err != nil {
			s.logger.Warn("set bounds failed", zap.String("region", item.Name), zap.Error(err))
			continue
		}
		visible := item.Fixed || intersects(rect, viewport)
		if err := item.Region.SetVisible(visible); err != nil {
			s.logger.Warn("set visible failed", zap.String("region", item.Name), zap.Error(err))
		}
	}
	for _, m := range s.motes {
		rect := s.moteRect(m)
		visible := intersects(s.toViewport(m.owner), viewport)
		if err := m.region.SetBounds(rect); err != nil {
			continue
		}
		_ = m.region.SetVisible(visible)
	}
}

// moteRect 光点静止时的视口矩形
func (s *Showcase) moteRect(m *mote) utils.Rect {
	owner := s.toViewport(m.owner)
	return utils.Rect{
		X:      owner.X + owner.Width*m.anchor.X - motion.MoteSize/2,
		Y:      owner.Y + owner.Height*m.anchor.Y - motion.MoteSize/2,
		Width:  motion.MoteSize,
		Height: motion.MoteSize,
	}
}

func (s *Showcase) toViewport(item *Item) utils.Rect {
	rect := item.Page
	if !item.Fixed {
		rect.Y -= s.scrollY
	}
	return rect
}

func intersects(a, b utils.Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width && a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// Viewport 视口矩形
func (s *Showcase) Viewport() utils.Rect {
	return utils.Rect{Width: s.opts.Width, Height: s.opts.Height}
}

// Engine 底层引擎
func (s *Showcase) Engine() *motion.Engine {
	return s.engine
}

// Items 所有区域，按名称排序
func (s *Showcase) Items() []*Item {
	return s.items
}

// Item 按名称查找区域
func (s *Showcase) Item(name string) (*Item, bool) {
	for _, item := range s.items {
		if item.Name == name {
			return item, true
		}
	}
	return nil, false
}

// Emitter 按名称查找发射器
func (s *Showcase) Emitter(name string) (*motion.Emitter, bool) {
	em, ok := s.emitters[name]
	return em, ok
}

// ScrollY 当前滚动偏移
func (s *Showcase) ScrollY() float64 {
	return s.scrollY
}

// MaxScroll 最大滚动偏移
func (s *Showcase) MaxScroll() float64 {
	return math.Max(0, s.opts.PageHeight-s.opts.Height)
}

// MovePointer 指针移动（视口坐标）
func (s *Showcase) MovePointer(x, y float64) {
	s.pointer = utils.Vec2{X: x, Y: y}
	s.hasPointer = true
	s.surface.MovePointer(x, y)
}

// ScrollBy 滚动页面，结果限制在 [0, MaxScroll]
func (s *Showcase) ScrollBy(dy float64) {
	s.ScrollTo(s.scrollY + dy)
}

// ScrollTo 滚动到指定偏移
func (s *Showcase) ScrollTo(y float64) {
	y = utils.Clamp(y, 0, s.MaxScroll())
	if y == s.scrollY {
		return
	}
	s.scrollY = y
	s.surface.Scroll(y)
	s.layout()
}

// Click 主键点击：发射涟漪，点中的脉冲按钮播放反馈，点中的开关切换状态
func (s *Showcase) Click(x, y float64) {
	p := utils.Vec2{X: x, Y: y}
	for _, name := range sortedKeys(s.emitters) {
		if s.kinds[name] != "ripple" {
			continue
		}
		if _, err := s.emitters[name].Burst(p, 1); err != nil {
			s.logger.Warn("ripple burst failed", zap.String("emitter", name), zap.Error(err))
		}
	}
	for _, item := range s.items {
		if !s.toViewport(item).Contains(p) {
			continue
		}
		switch item.Kind {
		case "pulse":
			s.trigger(item, motion.PulseTransition)
		case "toggle":
			s.toggled = !s.toggled
			input := 0.0
			if s.toggled {
				input = 1
			}
			if err := item.Region.SetInput(input); err != nil {
				s.logger.Warn("toggle failed", zap.String("region", item.Name), zap.Error(err))
			}
		}
	}
}

// AltClick 次键点击：所有表单区域播放错误抖动
func (s *Showcase) AltClick() {
	for _, item := range s.items {
		if item.Kind == "shake" {
			s.trigger(item, motion.ShakeTransition)
		}
	}
}

func (s *Showcase) trigger(item *Item, name string) {
	if err := item.Region.Trigger(name); err != nil {
		s.logger.Warn("trigger failed",
			zap.String("region", item.Name),
			zap.String("transition", name),
			zap.Error(err))
	}
}

// Toggled 开关状态
func (s *Showcase) Toggled() bool {
	return s.toggled
}

// Resize 视口尺寸变化：重新排版，环境粒子换到新的区域
func (s *Showcase) Resize(width, height float64) {
	if width <= 0 || height <= 0 || (width == s.opts.Width && height == s.opts.Height) {
		return
	}
	s.opts.Width, s.opts.Height = width, height

	var flow, bands int
	for _, item := range s.items {
		item.Page, item.Fixed = s.place(item.Kind, &flow, &bands)
	}
	for _, name := range sortedKeys(s.emitters) {
		if s.kinds[name] != "ambient" {
			continue
		}
		if err := s.emitters[name].SetBounds(s.Viewport()); err != nil {
			s.logger.Warn("resize emitter failed", zap.String("emitter", name), zap.Error(err))
		}
	}
	s.scrollY = utils.Clamp(s.scrollY, 0, s.MaxScroll())
	s.layout()
}

// Reload 用新的预设重建页面，保留滚动位置、指针和开关状态
func (s *Showcase) Reload(cfg *config.EffectsConfig) error {
	old, oldSurface := s.engine, s.surface
	oldItems, oldMotes, oldEmitters, oldKinds := s.items, s.motes, s.emitters, s.kinds
	oldHeadline, oldSwapper, oldCfg := s.headline, s.swapper, s.cfg

	if err := s.build(cfg); err != nil {
		// 新预设无法实例化时保留旧页面
		s.engine.Close()
		s.engine, s.items, s.motes, s.emitters, s.kinds = old, oldItems, oldMotes, oldEmitters, oldKinds
		s.headline, s.swapper, s.cfg = oldHeadline, oldSwapper, oldCfg
		s.surface = oldSurface
		return err
	}
	old.Close()
	if s.toggled {
		for _, item := range s.items {
			if item.Kind == "toggle" {
				_ = item.Region.SetInput(1)
			}
		}
	}
	s.logger.Info("showcase reloaded")
	return nil
}

// Frame 推进一帧
func (s *Showcase) Frame(now time.Duration) {
	s.now = now
	s.engine.Frame(now)
}

// Close 释放引擎和所有实例，重复调用是安全的
func (s *Showcase) Close() {
	if s.headline != nil {
		s.headline.Close()
	}
	if s.swapper != nil {
		s.swapper.Close()
	}
	if s.engine != nil {
		s.engine.Close()
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
