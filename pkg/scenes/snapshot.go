package scenes

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/studyjam/pkg/motion"
	"github.com/decker502/studyjam/pkg/utils"
)

// Box 一个区域本帧的绘制信息
type Box struct {
	Name    string
	Kind    string
	Rect    utils.Rect    // 变换前的视口矩形
	Corners [4]utils.Vec2 // 变换后的四个角，顺时针，从左上开始
	Out     motion.Output
	Visible bool
	Label   string
}

// moteColor 光点颜色，与磁吸容器同色
var moteColor = colorful.Color{R: 0x42 / 255.0, G: 0x85 / 255.0, B: 0xF4 / 255.0}

// Dot 一个粒子
type Dot struct {
	Emitter string
	motion.Particle
}

// Snapshot 展示页一帧的全部绘制信息
type Snapshot struct {
	Now       time.Duration
	ScrollY   float64
	Viewport  utils.Rect
	Boxes     []Box
	Dots      []Dot
	Headline  string
	Cursor    bool
	Word      string
	Underline float64
	Active    int
	Degraded  bool
}

// Snapshot 采集当前帧
func (s *Showcase) Snapshot() Snapshot {
	snap := Snapshot{
		Now:       s.now,
		ScrollY:   s.scrollY,
		Viewport:  s.Viewport(),
		Headline:  s.headline.Visible(),
		Cursor:    s.headline.CursorVisible(),
		Word:      s.swapper.Current(),
		Underline: s.swapper.Underline(),
		Active:    s.engine.ActiveCount(),
		Degraded:  s.engine.Degraded(),
	}

	viewport := s.Viewport()
	for _, item := range s.items {
		out, err := item.Region.Output()
		if err != nil {
			continue
		}
		rect := s.toViewport(item)
		snap.Boxes = append(snap.Boxes, Box{
			Name:    item.Name,
			Kind:    item.Kind,
			Rect:    rect,
			Corners: transform(item.Kind, rect, out),
			Out:     out,
			Visible: item.Fixed || intersects(rect, viewport),
			Label:   s.label(item),
		})
	}

	for i, m := range s.motes {
		if !intersects(s.toViewport(m.owner), viewport) {
			continue
		}
		owner, err := m.owner.Region.Output()
		if err != nil {
			continue
		}
		out, err := m.region.Output()
		if err != nil {
			continue
		}
		snap.Dots = append(snap.Dots, Dot{Emitter: MotesEmitter, Particle: motion.Particle{
			ID:       uint64(i + 1),
			Position: s.moteRect(m).Center().Add(utils.Vec2{X: owner.X + out.X, Y: owner.Y + out.Y}),
			Size:     motion.MoteSize,
			Scale:    out.Scale,
			Opacity:  out.Opacity,
			Color:    moteColor,
		}})
	}

	for _, name := range sortedKeys(s.emitters) {
		particles, err := s.emitters[name].Particles()
		if err != nil {
			continue
		}
		for _, p := range particles {
			snap.Dots = append(snap.Dots, Dot{Emitter: name, Particle: p})
		}
	}
	return snap
}

func (s *Showcase) label(item *Item) string {
	switch item.Kind {
	case "magnetic":
		return "so " + s.swapper.Current()
	case "fadeIn":
		return s.headline.Visible()
	case "toggle":
		if s.toggled {
			return "on"
		}
		return "off"
	default:
		return item.Name
	}
}

// transform 按输出变换矩形
//
// 平移后按 scale 缩放；rotateX/rotateY 近似为绕水平/竖直轴的透视压缩；
// rotate 绕中心旋转。进度条只按 progress 改变宽度，从左侧开始。
func transform(kind string, rect utils.Rect, out motion.Output) [4]utils.Vec2 {
	if kind == "scrollProgress" {
		w := rect.Width * utils.Clamp(out.Progress, 0, 1)
		return [4]utils.Vec2{
			{X: rect.X, Y: rect.Y},
			{X: rect.X + w, Y: rect.Y},
			{X: rect.X + w, Y: rect.Y + rect.Height},
			{X: rect.X, Y: rect.Y + rect.Height},
		}
	}

	c := rect.Center().Add(utils.Vec2{X: out.X, Y: out.Y})
	hw := rect.Width / 2 * out.Scale * math.Abs(math.Cos(out.RotateY*math.Pi/180))
	hh := rect.Height / 2 * out.Scale * math.Abs(math.Cos(out.RotateX*math.Pi/180))
	sin, cos := math.Sincos(out.Rotate * math.Pi / 180)

	local := [4]utils.Vec2{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	var corners [4]utils.Vec2
	for i, p := range local {
		corners[i] = c.Add(utils.Vec2{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos})
	}
	return corners
}
