package ebitenhost

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/decker502/studyjam/pkg/scenes"
	"github.com/decker502/studyjam/pkg/utils"
)

var (
	backgroundColor = color.RGBA{R: 18, G: 20, B: 28, A: 255}
	textColor       = color.RGBA{R: 230, G: 232, B: 240, A: 255}
	hudColor        = color.RGBA{R: 140, G: 150, B: 170, A: 255}
)

// kindColors 各类区域的填充色
var kindColors = map[string]colorful.Color{
	"magnetic":       mustHex("#4285F4"),
	"tilt":           mustHex("#34A853"),
	"scrollProgress": mustHex("#FBBC05"),
	"scrollSynced":   mustHex("#EA4335"),
	"parallax":       mustHex("#2A2F45"),
	"pulse":          mustHex("#8E6CEF"),
	"shake":          mustHex("#E8710A"),
	"fadeIn":         mustHex("#12B5CB"),
	"toggle":         mustHex("#5F6368"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// withAlpha colorful 颜色加透明度
func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(utils.Clamp(alpha, 0, 1) * 255)}
}

// quadVertices 四边形的填充顶点（两个三角形）
func quadVertices(corners [4]utils.Vec2, clr color.NRGBA) ([]ebiten.Vertex, []uint16) {
	r, g, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	vs := make([]ebiten.Vertex, 4)
	for i, p := range corners {
		vs[i] = ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		}
	}
	return vs, []uint16{0, 1, 2, 0, 2, 3}
}

type renderer struct {
	face  font.Face
	white *ebiten.Image
}

func newRenderer() *renderer {
	return &renderer{face: basicfont.Face7x13}
}

func (r *renderer) whitePixel() *ebiten.Image {
	if r.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		r.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return r.white
}

func (r *renderer) draw(screen *ebiten.Image, snap scenes.Snapshot) {
	screen.Fill(backgroundColor)

	// 视差条带在最底层
	for _, pass := range []bool{true, false} {
		for _, b := range snap.Boxes {
			if !b.Visible || (b.Kind == "parallax") != pass {
				continue
			}
			r.drawBox(screen, b)
		}
	}

	for _, d := range snap.Dots {
		radius := d.Size / 2 * d.Scale
		if radius <= 0 || d.Opacity <= 0 {
			continue
		}
		vector.DrawFilledCircle(screen, float32(d.Position.X), float32(d.Position.Y), float32(radius),
			withAlpha(d.Color, d.Opacity), true)
	}

	if snap.Headline != "" || snap.Cursor {
		line := snap.Headline
		if snap.Cursor {
			line += "|"
		}
		text.Draw(screen, line, r.face, 24, 40, textColor)
	}
	r.drawWord(screen, snap)
}

func (r *renderer) drawBox(screen *ebiten.Image, b scenes.Box) {
	base, ok := kindColors[b.Kind]
	if !ok {
		base = kindColors["tilt"]
	}
	vs, is := quadVertices(b.Corners, withAlpha(base, b.Out.Opacity))
	screen.DrawTriangles(vs, is, r.whitePixel(), &ebiten.DrawTrianglesOptions{AntiAlias: true})

	if b.Label == "" || b.Kind == "scrollProgress" || b.Out.Opacity < 0.05 {
		return
	}
	c := centroid(b.Corners)
	w := font.MeasureString(r.face, b.Label).Ceil()
	text.Draw(screen, b.Label, r.face, int(c.X)-w/2, int(c.Y)+4, withAlpha(colorful.Color{R: 1, G: 1, B: 1}, b.Out.Opacity))
}

// drawWord 换词和下划线
func (r *renderer) drawWord(screen *ebiten.Image, snap scenes.Snapshot) {
	x, y := float32(24), float32(64)
	label := "motion, but " + snap.Word
	text.Draw(screen, label, r.face, int(x), int(y), hudColor)
	w := float32(font.MeasureString(r.face, label).Ceil())
	vector.DrawFilledRect(screen, x, y+4, w*float32(snap.Underline), 2, kindColors["magnetic"], true)
}

func (r *renderer) drawHUD(screen *ebiten.Image, snap scenes.Snapshot, fps float64) {
	status := fmt.Sprintf("scroll %4.0f  active %2d  particles %3d  fps %2.0f", snap.ScrollY, snap.Active, len(snap.Dots), fps)
	if snap.Degraded {
		status += "  DEGRADED"
	}
	h := int(snap.Viewport.Height)
	text.Draw(screen, status, r.face, 8, h-10, hudColor)
	vector.StrokeRect(screen, 1, 1, float32(snap.Viewport.Width)-2, float32(snap.Viewport.Height)-2, 1, hudColor, false)
}

func centroid(corners [4]utils.Vec2) utils.Vec2 {
	var c utils.Vec2
	for _, p := range corners {
		c = c.Add(p)
	}
	return c.Scale(0.25)
}
