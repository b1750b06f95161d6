package termhost

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/studyjam/pkg/scenes"
	"github.com/decker502/studyjam/pkg/utils"
)

var (
	background = colorful.Color{R: 0.07, G: 0.08, B: 0.11}
	foreground = colorful.Color{R: 0.9, G: 0.91, B: 0.94}
	dim        = colorful.Color{R: 0.55, G: 0.59, B: 0.67}
)

// kindColors 各类区域的填充色
var kindColors = map[string]colorful.Color{
	"magnetic":       {R: 0.26, G: 0.52, B: 0.96},
	"tilt":           {R: 0.20, G: 0.66, B: 0.33},
	"scrollProgress": {R: 0.98, G: 0.74, B: 0.02},
	"scrollSynced":   {R: 0.92, G: 0.26, B: 0.21},
	"parallax":       {R: 0.16, G: 0.18, B: 0.27},
	"pulse":          {R: 0.56, G: 0.42, B: 0.94},
	"shake":          {R: 0.91, G: 0.44, B: 0.04},
	"fadeIn":         {R: 0.07, G: 0.71, B: 0.80},
	"toggle":         {R: 0.37, G: 0.39, B: 0.41},
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// fade 按透明度与背景在 Lab 空间混合
func fade(c colorful.Color, opacity float64) colorful.Color {
	return background.BlendLab(c, utils.Clamp(opacity, 0, 1))
}

// inside 点是否在凸四边形内（顶点顺时针或逆时针均可）
func inside(corners [4]utils.Vec2, p utils.Vec2) bool {
	var pos, neg bool
	for i := range corners {
		a, b := corners[i], corners[(i+1)%4]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// Draw 绘制当前快照
func (h *Host) Draw() {
	snap := h.showcase.Snapshot()
	s := h.screen
	cols, rows := s.Size()
	base := tcell.StyleDefault.Background(tcellColor(background)).Foreground(tcellColor(foreground))

	s.Clear()
	s.Fill(' ', base)

	for _, pass := range []bool{true, false} {
		for _, b := range snap.Boxes {
			if !b.Visible || (b.Kind == "parallax") != pass {
				continue
			}
			h.drawBox(b, cols, rows)
		}
	}

	for _, d := range snap.Dots {
		x := int(d.Position.X / h.opts.CellWidth)
		y := int(d.Position.Y / h.opts.CellHeight)
		if x < 0 || y < 0 || x >= cols || y >= rows || d.Opacity <= 0.05 {
			continue
		}
		r := '•'
		if d.Size*d.Scale > 2*h.opts.CellWidth {
			r = '●'
		}
		_, _, st, _ := s.GetContent(x, y)
		s.SetContent(x, y, r, nil, st.Foreground(tcellColor(fade(d.Color, d.Opacity))))
	}

	headline := snap.Headline
	if snap.Cursor {
		headline += "▌"
	}
	h.print(2, 1, headline, base.Bold(true))
	word := "motion, but " + snap.Word
	h.print(2, 2, word, base.Foreground(tcellColor(dim)))
	underline := int(math.Round(float64(len(word)) * snap.Underline))
	for i := 0; i < underline; i++ {
		s.SetContent(2+i, 3, '▔', nil, base.Foreground(tcellColor(kindColors["magnetic"])))
	}

	status := fmt.Sprintf(" scroll %4.0f  active %2d  particles %3d ", snap.ScrollY, snap.Active, len(snap.Dots))
	if snap.Degraded {
		status += " DEGRADED "
	}
	h.print(0, rows-1, status, base.Foreground(tcellColor(dim)).Reverse(true))
	s.Show()
}

func (h *Host) drawBox(b scenes.Box, cols, rows int) {
	s := h.screen
	color := tcellColor(fade(kindColors[b.Kind], b.Out.Opacity))

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range b.Corners {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	x0 := max(0, int(minX/h.opts.CellWidth))
	x1 := min(cols-1, int(maxX/h.opts.CellWidth))
	y0 := max(0, int(minY/h.opts.CellHeight))
	y1 := min(rows-1, int(maxY/h.opts.CellHeight))

	filled := false
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px, py := h.toPixels(x, y)
			if !inside(b.Corners, utils.Vec2{X: px, Y: py}) {
				continue
			}
			s.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(color))
			filled = true
		}
	}
	// 进度条比一格还细时至少画一行
	if !filled && b.Kind == "scrollProgress" {
		for x := x0; x <= x1 && x < int(b.Corners[1].X/h.opts.CellWidth); x++ {
			s.SetContent(x, y0, '▀', nil, tcell.StyleDefault.Foreground(color).Background(tcellColor(background)))
		}
	}

	if b.Label == "" || b.Kind == "scrollProgress" || b.Out.Opacity < 0.05 {
		return
	}
	var c utils.Vec2
	for _, p := range b.Corners {
		c = c.Add(p)
	}
	c = c.Scale(0.25)
	cx := int(c.X/h.opts.CellWidth) - len([]rune(b.Label))/2
	cy := int(c.Y / h.opts.CellHeight)
	h.print(cx, cy, b.Label, tcell.StyleDefault.Background(color).Foreground(tcellColor(foreground)))
}

func (h *Host) print(x, y int, str string, style tcell.Style) {
	cols, rows := h.screen.Size()
	if y < 0 || y >= rows {
		return
	}
	for _, r := range str {
		if x >= cols {
			return
		}
		if x >= 0 {
			h.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
}
