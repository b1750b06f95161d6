package systems

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/utils"
)

func testFactory(r utils.Random, origin utils.Vec2, _ utils.Rect) components.ParticleParams {
	return components.ParticleParams{
		Position:   origin.Add(utils.Vec2{X: utils.RandomSpread(r, 40), Y: utils.RandomSpread(r, 40)}),
		Velocity:   utils.Vec2{X: utils.RandomSpread(r, 48), Y: utils.RandomSpread(r, 48)},
		StartColor: colorful.Color{R: 0.26, G: 0.52, B: 0.96},
		EndColor:   colorful.Color{R: 0.26, G: 0.52, B: 0.96},
		Size:       utils.RandomInRange(r, 20, 50),
		Opacity:    utils.RandomInRange(r, 0.3, 0.7),
		MaxAge:     time.Duration(utils.RandomInRange(r, 2000, 3500)) * time.Millisecond,
	}
}

func newEmitter(em *ecs.EntityManager, mode components.EmitterMode, capacity int, policy components.OverflowPolicy, interval time.Duration) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.EmitterComponent{
		Key:         "test",
		Mode:        mode,
		Cap:         capacity,
		MinInterval: interval,
		Policy:      policy,
		Factory:     testFactory,
		Origin:      utils.Vec2{X: 100, Y: 100},
		Drag:        0.887,
	})
	return id
}

func emitterOf(em *ecs.EntityManager, id ecs.EntityID) *components.EmitterComponent {
	e, _ := ecs.GetComponent[*components.EmitterComponent](em, id)
	return e
}

// 每 80ms 节流、上限 16，模拟 1 秒（16ms 一帧）后存活 13 个
func TestParticleThrottledSpawnOverOneSecond(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(7), nil)
	id := newEmitter(em, components.EmitAutonomous, 16, components.PolicyEvictOldest, 80*time.Millisecond)

	var prev time.Duration
	for now := time.Duration(0); now < time.Second; now += frame {
		ps.Update(now, now-prev)
		prev = now
	}

	e := emitterOf(em, id)
	assert.Len(t, e.Particles, 13)
	assert.Equal(t, 13, e.Spawned)
	assert.Equal(t, 0, e.Evicted)
	for _, pid := range e.Particles {
		p, ok := ecs.GetComponent[*components.ParticleComponent](em, pid)
		require.True(t, ok)
		assert.LessOrEqual(t, p.Age, p.MaxAge)
	}
}

func TestParticlePopulationNeverExceedsCap(t *testing.T) {
	for _, policy := range []components.OverflowPolicy{components.PolicySkip, components.PolicyEvictOldest} {
		t.Run(policy.String(), func(t *testing.T) {
			em := ecs.NewEntityManager()
			ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
			id := newEmitter(em, components.EmitBurst, 16, policy, 0)

			for i := 0; i < 200; i++ {
				ps.Spawn(id, time.Duration(i)*time.Millisecond, utils.Vec2{})
				require.LessOrEqual(t, len(emitterOf(em, id).Particles), 16)
			}
			ps.Burst(id, time.Second, utils.Vec2{}, 50)
			assert.Len(t, emitterOf(em, id).Particles, 16)
		})
	}
}

func TestParticleEvictOldest(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 3, components.PolicyEvictOldest, 0)

	for i := 0; i < 3; i++ {
		require.Equal(t, SpawnOK, ps.Spawn(id, 0, utils.Vec2{}))
	}
	oldest := emitterOf(em, id).Particles[0]
	assert.Equal(t, SpawnEvicted, ps.Spawn(id, 0, utils.Vec2{}))

	e := emitterOf(em, id)
	assert.Len(t, e.Particles, 3)
	assert.NotContains(t, e.Particles, oldest)
	assert.False(t, em.Alive(oldest))
	assert.Equal(t, 1, e.Evicted)
	// ID 单调递增，顺序即生成顺序
	for i := 1; i < len(e.Particles); i++ {
		assert.Less(t, e.Particles[i-1], e.Particles[i])
	}
}

func TestParticleSkipAtCap(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 2, components.PolicySkip, 0)

	first := []ecs.EntityID{}
	for i := 0; i < 2; i++ {
		ps.Spawn(id, 0, utils.Vec2{})
	}
	first = append(first, emitterOf(em, id).Particles...)
	assert.Equal(t, SpawnSkipped, ps.Spawn(id, 0, utils.Vec2{}))
	assert.Equal(t, first, emitterOf(em, id).Particles)
	assert.Equal(t, 1, emitterOf(em, id).Skipped)
}

func TestParticleThrottle(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 16, components.PolicySkip, 80*time.Millisecond)

	assert.Equal(t, SpawnOK, ps.Spawn(id, 0, utils.Vec2{}))
	assert.Equal(t, SpawnThrottled, ps.Spawn(id, 79*time.Millisecond, utils.Vec2{}))
	assert.Equal(t, SpawnOK, ps.Spawn(id, 80*time.Millisecond, utils.Vec2{}))
	assert.Equal(t, 1, emitterOf(em, id).Throttled)
}

// 到达 MaxAge 的粒子在同一帧移除，存活粒子的 Age 永远不超过 MaxAge
func TestParticleExpiry(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 16, components.PolicySkip, 0)
	emitterOf(em, id).Factory = func(utils.Random, utils.Vec2, utils.Rect) components.ParticleParams {
		return components.ParticleParams{Opacity: 1, MaxAge: 100 * time.Millisecond, Size: 4}
	}
	ps.Burst(id, 0, utils.Vec2{}, 4)

	ps.Update(50*time.Millisecond, 50*time.Millisecond)
	e := emitterOf(em, id)
	require.Len(t, e.Particles, 4)
	p, _ := ecs.GetComponent[*components.ParticleComponent](em, e.Particles[0])
	assert.InDelta(t, 0.5, p.Opacity, 1e-9, "linear fade by age/maxAge")

	ps.Update(100*time.Millisecond, 50*time.Millisecond)
	assert.Empty(t, emitterOf(em, id).Particles)
	assert.Equal(t, 0, len(ecs.GetEntitiesWith[*components.ParticleComponent](em)))
}

func TestParticleOpacityEpsilonRemoval(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 16, components.PolicySkip, 0)
	emitterOf(em, id).Factory = func(utils.Random, utils.Vec2, utils.Rect) components.ParticleParams {
		return components.ParticleParams{Opacity: 0.02, MaxAge: time.Second}
	}
	ps.Burst(id, 0, utils.Vec2{}, 1)
	ps.Update(600*time.Millisecond, 600*time.Millisecond)
	assert.Empty(t, emitterOf(em, id).Particles)
}

func TestParticleCurves(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 16, components.PolicySkip, 0)
	emitterOf(em, id).Factory = func(utils.Random, utils.Vec2, utils.Rect) components.ParticleParams {
		return components.ParticleParams{
			Opacity:      1,
			MaxAge:       600 * time.Millisecond,
			ScaleCurve:   []particle.Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 4}},
			OpacityCurve: []particle.Keyframe{{Time: 0, Value: 1}, {Time: 1, Value: 0}},
		}
	}
	ps.Burst(id, 0, utils.Vec2{}, 1)
	p, _ := ecs.GetComponent[*components.ParticleComponent](em, emitterOf(em, id).Particles[0])
	assert.Equal(t, 0.0, p.Scale)

	ps.Update(300*time.Millisecond, 300*time.Millisecond)
	assert.InDelta(t, 2, p.Scale, 1e-9)
	assert.InDelta(t, 0.5, p.Opacity, 1e-9)
}

func TestParticleWrapAndRepel(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(1), nil)
	id := newEmitter(em, components.EmitBurst, 16, components.PolicySkip, 0)
	e := emitterOf(em, id)
	e.Wrap = true
	e.Bounds = utils.Rect{Width: 100, Height: 100}
	e.Drag = 1
	e.Factory = func(utils.Random, utils.Vec2, utils.Rect) components.ParticleParams {
		return components.ParticleParams{Position: utils.Vec2{X: 99, Y: 50}, Velocity: utils.Vec2{X: 100}, Opacity: 1, MaxAge: time.Minute}
	}
	ps.Burst(id, 0, utils.Vec2{}, 1)
	ps.Update(20*time.Millisecond, 20*time.Millisecond)
	p, _ := ecs.GetComponent[*components.ParticleComponent](em, e.Particles[0])
	assert.InDelta(t, 1, p.Position.X, 1e-9, "wraps to the left edge")

	// 指针在左侧，粒子被推向右
	e.RepelRadius = 50
	e.RepelStrength = 360
	e.HasPointer = true
	e.Pointer = utils.Vec2{X: -10, Y: 50}
	p.Velocity = utils.Vec2{}
	ps.Update(40*time.Millisecond, 20*time.Millisecond)
	assert.Greater(t, p.Velocity.X, 0.0)
}

func TestParticleWrapFoldsFarPositions(t *testing.T) {
	b := utils.Rect{X: 1000, Y: 1000, Width: 500, Height: 500}
	tests := []struct {
		name string
		in   utils.Vec2
		want utils.Vec2
	}{
		{"区域内不变", utils.Vec2{X: 1200, Y: 1300}, utils.Vec2{X: 1200, Y: 1300}},
		{"远在左上", utils.Vec2{X: 50, Y: 20}, utils.Vec2{X: 1050, Y: 1020}},
		{"远在右下", utils.Vec2{X: 2700, Y: 3100}, utils.Vec2{X: 1200, Y: 1100}},
		{"右边界回到左边界", utils.Vec2{X: 1500, Y: 1000}, utils.Vec2{X: 1000, Y: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrap(tt.in, b)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.True(t, b.Contains(got))
		})
	}
}

// 均匀生成读取发射器当前区域
func TestParticleSpawnUsesCurrentBounds(t *testing.T) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em, utils.NewSeededRandom(3), nil)
	id := newEmitter(em, components.EmitBurst, 16, components.PolicySkip, 0)
	e := emitterOf(em, id)
	e.Bounds = utils.Rect{Width: 100, Height: 100}
	e.Factory = func(r utils.Random, _ utils.Vec2, b utils.Rect) components.ParticleParams {
		return components.ParticleParams{
			Position: utils.Vec2{X: b.X + r.Float64()*b.Width, Y: b.Y + r.Float64()*b.Height},
			Opacity:  1,
			MaxAge:   time.Minute,
		}
	}

	e.Bounds = utils.Rect{X: 1000, Y: 1000, Width: 500, Height: 500}
	require.Equal(t, 5, ps.Burst(id, 0, utils.Vec2{}, 5))
	for _, pid := range e.Particles {
		p, _ := ecs.GetComponent[*components.ParticleComponent](em, pid)
		assert.True(t, e.Bounds.Contains(p.Position), "%v", p.Position)
	}
}

// 相同种子产生完全相同的生成序列
func TestParticleDeterministicSpawnSequence(t *testing.T) {
	run := func() []components.ParticleComponent {
		em := ecs.NewEntityManager()
		ps := NewParticleSystem(em, utils.NewSeededRandom(2024), nil)
		id := newEmitter(em, components.EmitPointer, 16, components.PolicyEvictOldest, 0)
		for i := 0; i < 10; i++ {
			e := emitterOf(em, id)
			e.Pointer = utils.Vec2{X: float64(i * 10), Y: 5}
			e.PointerMoved = true
			now := time.Duration(i) * frame
			ps.Update(now, frame)
		}
		var out []components.ParticleComponent
		for _, pid := range emitterOf(em, id).Particles {
			p, _ := ecs.GetComponent[*components.ParticleComponent](em, pid)
			out = append(out, *p)
		}
		return out
	}
	a, b := run(), run()
	require.Len(t, a, 10)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("spawn sequence differs (-first +second):\n%s", diff)
	}
}
