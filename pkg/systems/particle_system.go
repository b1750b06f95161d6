package systems

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/utils"
)

// VisibilityEpsilon 透明度低于该值的粒子立即移除
const VisibilityEpsilon = 0.01

// SpawnResult 一次生成请求的结果
type SpawnResult int

const (
	SpawnOK SpawnResult = iota
	SpawnThrottled
	SpawnSkipped
	SpawnEvicted // 生成成功，但移除了最早的粒子
)

func (r SpawnResult) String() string {
	switch r {
	case SpawnOK:
		return "ok"
	case SpawnThrottled:
		return "throttled"
	case SpawnSkipped:
		return "skipped"
	case SpawnEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// Spawned 是否生成了新粒子
func (r SpawnResult) Spawned() bool {
	return r == SpawnOK || r == SpawnEvicted
}

// ParticleSystem manages all particle emitters and individual particles.
//
// The system processes each emitter in two phases:
//  1. Age existing particles (apply velocity, drag, repulsion, fade) and remove expired ones
//  2. Spawn new particles according to the emitter mode, throttle and population cap
//
// Follows ECS zero-coupling principle: communicates only through EntityManager.
type ParticleSystem struct {
	entityManager *ecs.EntityManager
	random        utils.Random
	logger        *zap.Logger
}

// NewParticleSystem creates a new ParticleSystem instance.
func NewParticleSystem(em *ecs.EntityManager, r utils.Random, logger *zap.Logger) *ParticleSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticleSystem{entityManager: em, random: r, logger: logger}
}

// Update processes all emitters and particles for the current frame.
func (ps *ParticleSystem) Update(now, dt time.Duration) {
	for _, id := range ecs.GetEntitiesWith[*components.EmitterComponent](ps.entityManager) {
		emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.entityManager, id)
		if !ok {
			continue
		}
		ps.tick(emitter, dt)

		switch emitter.Mode {
		case components.EmitAutonomous:
			ps.Spawn(id, now, emitter.Origin)
		case components.EmitPointer:
			if emitter.PointerMoved {
				emitter.PointerMoved = false
				ps.Spawn(id, now, emitter.Pointer)
			}
		}
	}
}

// Spawn 请求生成一个粒子，受节流与数量上限约束
func (ps *ParticleSystem) Spawn(id ecs.EntityID, now time.Duration, origin utils.Vec2) SpawnResult {
	emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.entityManager, id)
	if !ok {
		return SpawnSkipped
	}
	if emitter.HasSpawned && now-emitter.LastSpawn < emitter.MinInterval {
		emitter.Throttled++
		return SpawnThrottled
	}
	result := ps.spawnOne(id, emitter, origin)
	if result.Spawned() {
		emitter.LastSpawn = now
		emitter.HasSpawned = true
	}
	return result
}

// Burst 一次生成 n 个粒子，不受节流限制，仍受数量上限约束
func (ps *ParticleSystem) Burst(id ecs.EntityID, now time.Duration, origin utils.Vec2, n int) int {
	emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.entityManager, id)
	if !ok {
		return 0
	}
	spawned := 0
	for i := 0; i < n; i++ {
		if ps.spawnOne(id, emitter, origin).Spawned() {
			spawned++
		}
	}
	if spawned > 0 {
		emitter.LastSpawn = now
		emitter.HasSpawned = true
	}
	return spawned
}

func (ps *ParticleSystem) spawnOne(id ecs.EntityID, emitter *components.EmitterComponent, origin utils.Vec2) SpawnResult {
	result := SpawnOK
	if len(emitter.Particles) >= emitter.Cap {
		if emitter.Policy == components.PolicySkip || len(emitter.Particles) == 0 {
			emitter.Skipped++
			return SpawnSkipped
		}
		oldest := emitter.Particles[0]
		emitter.Particles = emitter.Particles[1:]
		ps.entityManager.DestroyEntity(oldest)
		emitter.Evicted++
		result = SpawnEvicted
	}

	params := emitter.Factory(ps.random, origin, emitter.Bounds)
	pid := ps.entityManager.CreateEntity()
	ecs.AddComponent(ps.entityManager, pid, &components.ParticleComponent{
		Emitter:      id,
		Position:     params.Position,
		Velocity:     params.Velocity,
		Color:        params.StartColor,
		StartColor:   params.StartColor,
		EndColor:     params.EndColor,
		Size:         params.Size,
		Scale:        initialCurveValue(params.ScaleCurve, 1),
		Opacity:      initialCurveValue(params.OpacityCurve, 1) * params.Opacity,
		BaseOpacity:  params.Opacity,
		MaxAge:       params.MaxAge,
		ScaleCurve:   params.ScaleCurve,
		OpacityCurve: params.OpacityCurve,
		CurveEase:    params.CurveEase,
	})
	emitter.Particles = append(emitter.Particles, pid)
	emitter.Spawned++
	return result
}

func initialCurveValue(curve []particle.Keyframe, fallback float64) float64 {
	if len(curve) == 0 {
		return fallback
	}
	return curve[0].Value
}

// tick 推进一个发射器的所有粒子，移除过期粒子
func (ps *ParticleSystem) tick(emitter *components.EmitterComponent, dt time.Duration) {
	secs := dt.Seconds()
	drag := 1.0
	if emitter.Drag > 0 && emitter.Drag < 1 {
		drag = math.Pow(emitter.Drag, secs)
	}

	alive := emitter.Particles[:0]
	for _, pid := range emitter.Particles {
		p, ok := ecs.GetComponent[*components.ParticleComponent](ps.entityManager, pid)
		if !ok {
			continue
		}

		p.Age += dt
		if p.Age >= p.MaxAge {
			ps.entityManager.DestroyEntity(pid)
			continue
		}
		life := float64(p.Age) / float64(p.MaxAge)

		if emitter.RepelRadius > 0 && emitter.HasPointer {
			away := p.Position.Sub(emitter.Pointer)
			if d := away.Len(); d > 0 && d < emitter.RepelRadius {
				// RepelStrength 为半径中心处的加速度（像素/秒²）
				force := (emitter.RepelRadius - d) / emitter.RepelRadius * emitter.RepelStrength
				p.Velocity = p.Velocity.Add(away.Scale(force / d * secs))
			}
		}

		p.Velocity = p.Velocity.Scale(drag)
		p.Position = p.Position.Add(p.Velocity.Scale(secs))
		if emitter.Wrap && !emitter.Bounds.Empty() {
			p.Position = wrap(p.Position, emitter.Bounds)
		}

		if len(p.OpacityCurve) > 0 {
			p.Opacity = p.BaseOpacity * particle.EvaluateKeyframes(p.OpacityCurve, life, p.CurveEase)
		} else {
			p.Opacity = p.BaseOpacity * (1 - life)
		}
		if len(p.ScaleCurve) > 0 {
			p.Scale = particle.EvaluateKeyframes(p.ScaleCurve, life, p.CurveEase)
		}
		p.Color = p.StartColor.BlendLab(p.EndColor, life).Clamped()

		if p.Opacity < VisibilityEpsilon {
			ps.entityManager.DestroyEntity(pid)
			continue
		}
		alive = append(alive, pid)
	}
	emitter.Particles = alive
}

// wrap 把任意位置折回区域内（区域改变后远离的粒子也能一步回到区域）
func wrap(p utils.Vec2, b utils.Rect) utils.Vec2 {
	p.X = b.X + fold(p.X-b.X, b.Width)
	p.Y = b.Y + fold(p.Y-b.Y, b.Height)
	return p
}

func fold(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

// Clear 移除发射器的所有粒子
func (ps *ParticleSystem) Clear(id ecs.EntityID) {
	emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.entityManager, id)
	if !ok {
		return
	}
	for _, pid := range emitter.Particles {
		ps.entityManager.DestroyEntity(pid)
	}
	emitter.Particles = nil
}
