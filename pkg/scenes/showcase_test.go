package scenes

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/studyjam/pkg/config"
	"github.com/decker502/studyjam/pkg/motion"
	"github.com/decker502/studyjam/pkg/utils"
)

const (
	width  = 800.0
	height = 600.0
	step   = 16 * time.Millisecond
)

type harness struct {
	t   *testing.T
	s   *Showcase
	now time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.LoadEffects("../../data/effects.yaml")
	require.NoError(t, err)
	s, err := NewShowcase(cfg, Options{Width: width, Height: height, Seed: 1})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	h := &harness{t: t, s: s}
	s.Frame(0)
	return h
}

func (h *harness) run(d time.Duration) {
	for end := h.now + d; h.now < end; {
		h.now += step
		h.s.Frame(h.now)
	}
}

func (h *harness) box(name string) Box {
	h.t.Helper()
	for _, b := range h.s.Snapshot().Boxes {
		if b.Name == name {
			return b
		}
	}
	h.t.Fatalf("box %q not found", name)
	return Box{}
}

// reveal 把区域滚动到视口上部，返回它的视口中心
func (h *harness) reveal(name string) utils.Vec2 {
	h.t.Helper()
	item, ok := h.s.Item(name)
	require.True(h.t, ok, name)
	h.s.ScrollTo(item.Page.Y - 100)
	return h.box(name).Rect.Center()
}

func TestShowcaseBuildsEveryPreset(t *testing.T) {
	h := newHarness(t)

	// 11 个预设，tilt 额外两个副本；磁吸容器另带 8 个光点
	assert.Len(t, h.s.Items(), 13)
	assert.Equal(t, 13+motion.MoteCount, h.s.Engine().Regions())
	assert.Equal(t, 3, h.s.Engine().Emitters())

	for _, name := range []string{"card-1", "card-2", "card-3", "hero", "progress"} {
		_, ok := h.s.Item(name)
		assert.True(t, ok, name)
	}
	progress, _ := h.s.Item("progress")
	assert.True(t, progress.Fixed)
	assert.Equal(t, 3400.0, h.s.MaxScroll())
}

func TestShowcaseScrollDrivesProgress(t *testing.T) {
	h := newHarness(t)
	h.s.ScrollTo(1700)
	h.run(3 * time.Second)
	assert.InDelta(t, 0.5, h.box("progress").Out.Progress, 0.01)

	h.s.ScrollBy(1e6)
	assert.Equal(t, 3400.0, h.s.ScrollY(), "scroll is clamped")
	h.run(3 * time.Second)

	b := h.box("progress")
	assert.InDelta(t, 1, b.Out.Progress, 0.01)
	assert.InDelta(t, width, b.Corners[1].X, 10, "bar spans the viewport")
}

func TestShowcaseMotesFollowHero(t *testing.T) {
	h := newHarness(t)
	h.run(time.Second)

	hero := h.box("hero").Rect
	area := utils.Rect{X: hero.X - 30, Y: hero.Y - 40, Width: hero.Width + 60, Height: hero.Height + 80}
	motes := 0
	for _, d := range h.s.Snapshot().Dots {
		if d.Emitter != MotesEmitter {
			continue
		}
		motes++
		assert.True(t, area.Contains(d.Position), "mote %v outside %v", d.Position, hero)
		assert.GreaterOrEqual(t, d.Opacity, 0.19)
		assert.LessOrEqual(t, d.Opacity, 0.81)
	}
	assert.Equal(t, motion.MoteCount, motes)

	// 容器滚出视口后光点不再绘制
	h.s.ScrollTo(3000)
	h.run(step)
	for _, d := range h.s.Snapshot().Dots {
		assert.NotEqual(t, MotesEmitter, d.Emitter)
	}
}

func TestShowcaseClickTogglesAndRipples(t *testing.T) {
	h := newHarness(t)
	c := h.reveal("toggle")

	h.s.Click(c.X, c.Y)
	assert.True(t, h.s.Toggled())
	h.run(time.Second)

	b := h.box("toggle")
	assert.InDelta(t, 24, b.Out.X, 0.1)
	assert.Equal(t, "on", b.Label)

	ripples := 0
	for _, d := range h.s.Snapshot().Dots {
		if d.Emitter == "ripple" {
			ripples++
		}
	}
	assert.Zero(t, ripples, "ripple has faded after its 600ms life")

	h.s.Click(c.X, c.Y)
	h.run(step)
	for _, d := range h.s.Snapshot().Dots {
		if d.Emitter == "ripple" {
			ripples++
		}
	}
	assert.Equal(t, 1, ripples)
	assert.False(t, h.s.Toggled())
}

func TestShowcaseAltClickShakesForm(t *testing.T) {
	h := newHarness(t)
	h.reveal("form")
	h.run(100 * time.Millisecond)

	h.s.AltClick()
	peak := 0.0
	for i := 0; i < 40; i++ {
		h.run(step)
		peak = math.Max(peak, math.Abs(h.box("form").Out.X))
	}
	assert.InDelta(t, 4, peak, 0.5, "medium shake peaks at 4px")
	h.run(time.Second)
	assert.InDelta(t, 0, h.box("form").Out.X, 1e-6)
}

func TestShowcaseReloadKeepsScroll(t *testing.T) {
	h := newHarness(t)
	h.s.ScrollTo(900)
	h.run(100 * time.Millisecond)

	cfg, err := config.ParseEffects([]byte(`
regions:
  progress:
    kind: scrollProgress
    start: 0
    end: 1800
`))
	require.NoError(t, err)
	require.NoError(t, h.s.Reload(cfg))

	assert.Len(t, h.s.Items(), 1)
	assert.Equal(t, 900.0, h.s.ScrollY())
	h.run(3 * time.Second)
	assert.InDelta(t, 0.5, h.box("progress").Out.Progress, 0.01)
}

func TestShowcaseReloadFailureKeepsOldPage(t *testing.T) {
	h := newHarness(t)
	bad := &config.EffectsConfig{Regions: map[string]config.RegionPreset{"x": {Kind: "wobble"}}}

	err := h.s.Reload(bad)
	assert.ErrorIs(t, err, motion.ErrInvalidConfig)
	assert.Len(t, h.s.Items(), 13)
	h.run(step)
	assert.False(t, h.s.Engine().Degraded())
}

func TestShowcaseRejectsEmptyViewport(t *testing.T) {
	_, err := NewShowcase(&config.EffectsConfig{}, Options{Width: 0, Height: 600})
	var cfgErr *motion.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "viewport", cfgErr.Field)
}

func TestTransform(t *testing.T) {
	rect := utils.Rect{X: 0, Y: 0, Width: 100, Height: 50}

	neutral := transform("tilt", rect, motion.NeutralOutput())
	assert.Equal(t, [4]utils.Vec2{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 0, Y: 50}}, neutral)

	out := motion.NeutralOutput()
	out.X, out.Rotate, out.Scale = 10, 90, 2
	got := transform("tilt", rect, out)
	// 中心 (60, 25)，放大后半宽 100、半高 50，旋转 90° 后左上角落在 (110, -75)
	assert.InDelta(t, 110, got[0].X, 1e-9)
	assert.InDelta(t, -75, got[0].Y, 1e-9)

	out = motion.NeutralOutput()
	out.Progress = 0.25
	bar := transform("scrollProgress", rect, out)
	assert.InDelta(t, 25, bar[1].X, 1e-9)
}

func TestSimulateIsDeterministic(t *testing.T) {
	run := func() []Sample {
		h := newHarness(t)
		return Simulate(h.s, DefaultScript(width, height))
	}
	a, b := run(), run()
	require.Len(t, a, 9)
	assert.Equal(t, 239, a[len(a)-1].Frame)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("simulation differs between runs (-first +second):\n%s", diff)
	}
}
