package motion

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/utils"
)

// 每 16ms 移动一次指针，持续 1 秒：节流 80ms 时生成 0, 80, ..., 960 共 13 个
func TestCursorTrailThrottledSpawns(t *testing.T) {
	h := newHarness(t)
	trail, err := h.engine.CreateEmitter(CursorBlobs("trail"))
	require.NoError(t, err)

	h.surface.MovePointer(0, 0)
	h.engine.Frame(0)
	for h.now+frame < time.Second {
		h.surface.MovePointer(float64(h.now/time.Millisecond), 100)
		h.step()
	}

	count, err := trail.Count()
	require.NoError(t, err)
	assert.Equal(t, 13, count)

	particles, err := trail.Particles()
	require.NoError(t, err)
	for _, p := range particles {
		assert.LessOrEqual(t, p.Age, p.MaxAge)
		assert.GreaterOrEqual(t, p.MaxAge, 2000*time.Millisecond)
		assert.LessOrEqual(t, p.MaxAge, 3500*time.Millisecond)
	}

	stats, _ := trail.Stats()
	assert.Equal(t, 13, stats.Spawned)
	assert.Zero(t, stats.Evicted)
	assert.Positive(t, stats.Throttled)
}

func TestCursorTrailEvictsOldestAtCap(t *testing.T) {
	h := newHarness(t)
	trail, err := h.engine.CreateEmitter(CursorBlobs("trail"))
	require.NoError(t, err)

	var first uint64
	for i := 0; i < 40; i++ {
		h.surface.MovePointer(float64(i), 0)
		h.run(h.now + 80*time.Millisecond)
		count, _ := trail.Count()
		require.LessOrEqual(t, count, 16)
		if i == 0 {
			ps, _ := trail.Particles()
			require.Len(t, ps, 1)
			first = ps[0].ID
		}
	}

	ps, _ := trail.Particles()
	for _, p := range ps {
		assert.NotEqual(t, first, p.ID, "the oldest particle is evicted first")
	}
	stats, _ := trail.Stats()
	assert.Positive(t, stats.Evicted)
}

func TestAmbientParticlesSkipAtCap(t *testing.T) {
	h := newHarness(t)
	bounds := utils.Rect{Width: 800, Height: 600}
	cfg, err := AmbientParticles("stars", 30, SizeMedium, SpeedFast, bounds)
	require.NoError(t, err)
	stars, err := h.engine.CreateEmitter(cfg)
	require.NoError(t, err)

	h.surface.MovePointer(400, 300)
	h.run(4 * time.Second)

	stats, err := stars.Stats()
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Live)
	assert.Positive(t, stats.Skipped)
	assert.Zero(t, stats.Evicted)

	ps, _ := stars.Particles()
	for _, p := range ps {
		assert.True(t, bounds.Contains(p.Position), "wrapped particle %v outside bounds", p.Position)
		assert.GreaterOrEqual(t, p.Size, 2.0)
		assert.LessOrEqual(t, p.Size, 5.0)
	}

	_, err = AmbientParticles("stars", 30, "huge", SpeedFast, bounds)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// 窗口尺寸变化后，新生成的和已有的粒子都落在新区域内
func TestAmbientParticlesFollowNewBounds(t *testing.T) {
	h := newHarness(t)
	cfg, err := AmbientParticles("stars", 30, SizeSmall, SpeedSlow, utils.Rect{Width: 100, Height: 100})
	require.NoError(t, err)
	stars, err := h.engine.CreateEmitter(cfg)
	require.NoError(t, err)
	h.run(500 * time.Millisecond)

	moved := utils.Rect{X: 1000, Y: 1000, Width: 500, Height: 500}
	require.NoError(t, stars.SetBounds(moved))
	_, err = stars.Burst(utils.Vec2{}, 5)
	require.NoError(t, err)
	h.run(16 * time.Millisecond)

	ps, err := stars.Particles()
	require.NoError(t, err)
	require.NotEmpty(t, ps)
	for _, p := range ps {
		assert.True(t, moved.Contains(p.Position), "particle %v outside %v", p.Position, moved)
	}
}

func TestRippleBurst(t *testing.T) {
	h := newHarness(t)
	ripple, err := h.engine.CreateEmitter(Ripple("click", "#4285F4"))
	require.NoError(t, err)

	n, err := ripple.Burst(utils.Vec2{X: 10, Y: 10}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	h.run(300 * time.Millisecond)
	ps, _ := ripple.Particles()
	require.Len(t, ps, 3)
	assert.Greater(t, ps[0].Scale, 1.0)
	assert.Less(t, ps[0].Opacity, 0.6)

	h.run(700 * time.Millisecond)
	count, _ := ripple.Count()
	assert.Zero(t, count)

	// 上限 8 个
	n, _ = ripple.Burst(utils.Vec2{}, 20)
	assert.Equal(t, 20, n)
	count, _ = ripple.Count()
	assert.Equal(t, 8, count)
}

func TestEmitterSpawnSequenceIsDeterministic(t *testing.T) {
	positions := func() []utils.Vec2 {
		h := newHarness(t)
		e, err := h.engine.CreateEmitter(CursorBlobs("trail"))
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			res, err := e.Spawn(utils.Vec2{X: 100, Y: 100})
			require.NoError(t, err)
			require.True(t, res.Spawned())
			h.run(h.now + 80*time.Millisecond)
		}
		ps, _ := e.Particles()
		out := make([]utils.Vec2, len(ps))
		for i, p := range ps {
			out[i] = p.Position
		}
		return out
	}
	a, b := positions(), positions()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("spawn sequence differs with the same seed (-first +second):\n%s", diff)
	}
}

func TestEmitterSpawnThrottle(t *testing.T) {
	h := newHarness(t)
	e, err := h.engine.CreateEmitter(CursorBlobs("trail"))
	require.NoError(t, err)

	res, _ := e.Spawn(utils.Vec2{})
	assert.Equal(t, SpawnOK, res)
	res, _ = e.Spawn(utils.Vec2{})
	assert.Equal(t, SpawnThrottled, res)
	h.run(80 * time.Millisecond)
	res, _ = e.Spawn(utils.Vec2{})
	assert.Equal(t, SpawnOK, res)
}

func TestEmitterConfigErrors(t *testing.T) {
	h := newHarness(t)
	base := CursorBlobs("trail")

	tests := []struct {
		name   string
		mutate func(*EmitterConfig)
	}{
		{"zero cap", func(c *EmitterConfig) { c.Cap = 0 }},
		{"negative interval", func(c *EmitterConfig) { c.MinInterval = -time.Millisecond }},
		{"drag above one", func(c *EmitterConfig) { c.Drag = 1.5 }},
		{"bad palette", func(c *EmitterConfig) { c.Particle.Palette = []string{"blue"} }},
		{"zero life", func(c *EmitterConfig) { c.Particle.Life = particle.Value{} }},
		{"opacity above one", func(c *EmitterConfig) { c.Particle.Opacity = particle.Range(0.5, 2) }},
		{"wrap without bounds", func(c *EmitterConfig) { c.Wrap = true }},
		{"unknown ease", func(c *EmitterConfig) { c.Particle.Ease = "wobble" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Particle.Palette = append([]string(nil), base.Particle.Palette...)
			tt.mutate(&cfg)
			_, err := h.engine.CreateEmitter(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	assert.Zero(t, h.engine.Emitters())
}

func TestEmitterDispose(t *testing.T) {
	h := newHarness(t)
	e, err := h.engine.CreateEmitter(CursorBlobs("trail"))
	require.NoError(t, err)
	_, _ = e.Burst(utils.Vec2{}, 5)
	require.Equal(t, 1, h.surface.Listeners(signal.KindPointer))

	e.Dispose()
	e.Dispose()
	assert.Equal(t, 0, h.surface.Listeners(signal.KindPointer))
	assert.Zero(t, h.engine.Emitters())

	_, err = e.Spawn(utils.Vec2{})
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = e.Burst(utils.Vec2{}, 1)
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = e.Count()
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = e.Particles()
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = e.Stats()
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, e.SetOrigin(utils.Vec2{}), ErrDisposed)
	assert.ErrorIs(t, e.SetBounds(utils.Rect{}), ErrDisposed)
}
