package motion

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/systems"
	"github.com/decker502/studyjam/pkg/utils"
)

// SpawnResult 单次生成请求的结果
type SpawnResult = systems.SpawnResult

const (
	SpawnOK        = systems.SpawnOK
	SpawnThrottled = systems.SpawnThrottled
	SpawnSkipped   = systems.SpawnSkipped
	SpawnEvicted   = systems.SpawnEvicted
)

// ParticleSpec 声明式的粒子参数，数值字段使用 particle.Value 语法（"[20 50]" 等）
type ParticleSpec struct {
	Size    particle.Value // 直径，像素
	Opacity particle.Value
	Speed   particle.Value // 像素/秒
	// Direction 运动方向（度）；为零值时在整个圆周上随机
	Direction particle.Value
	Life      particle.Value // 毫秒

	// Scale / Alpha 生命周期内的曲线（关键帧或 "[start] [end]" 双区间）
	Scale particle.Value
	Alpha particle.Value
	Ease  string

	// Spread 生成位置在发射点周围的随机偏移宽度
	Spread float64
	// Uniform 在 Bounds 内均匀生成（环境粒子），忽略发射点
	Uniform bool

	// Palette 十六进制颜色，每个粒子随机取一个
	Palette []string
	// FadeTo 生命结束时的颜色；为空时保持起始颜色
	FadeTo string
}

// EmitterConfig 发射器配置
type EmitterConfig struct {
	Key string

	Mode        EmitterMode
	Cap         int
	MinInterval time.Duration
	Policy      OverflowPolicy

	Particle ParticleSpec
	// Factory 不为 nil 时替代 Particle
	Factory ParamsFactory

	Origin utils.Vec2
	Bounds utils.Rect
	Wrap   bool

	// Drag 每秒保留的速度比例，取值 [0, 1]，0 表示无阻力
	Drag float64

	RepelRadius   float64
	RepelStrength float64
}

// Validate 校验配置，不创建发射器
func (c EmitterConfig) Validate() error {
	if c.Cap <= 0 {
		return configErr("cap", c.Cap, "must be positive")
	}
	if c.MinInterval < 0 {
		return configErr("minInterval", c.MinInterval, "must not be negative")
	}
	if c.Mode < EmitPointer || c.Mode > EmitBurst {
		return configErr("mode", c.Mode, "unknown emitter mode")
	}
	if c.Policy != PolicySkip && c.Policy != PolicyEvictOldest {
		return configErr("policy", c.Policy, "unknown overflow policy")
	}
	if c.Drag < 0 || c.Drag > 1 || math.IsNaN(c.Drag) {
		return configErr("drag", c.Drag, "must be within [0, 1]")
	}
	if c.RepelRadius < 0 || !finite(c.RepelRadius) {
		return configErr("repelRadius", c.RepelRadius, "must not be negative")
	}
	if c.Bounds.Width < 0 || c.Bounds.Height < 0 {
		return configErr("bounds", c.Bounds, "negative size")
	}
	if c.Wrap && c.Bounds.Empty() {
		return configErr("wrap", c.Wrap, "wrap needs non-empty bounds")
	}
	if c.Factory != nil {
		return nil
	}
	return c.Particle.validate(c.Bounds)
}

func (p ParticleSpec) validate(bounds utils.Rect) error {
	if p.Life.IsZero() || p.Life.Min <= 0 {
		return configErr("particle.life", p.Life.String(), "must be positive")
	}
	if p.Size.Min < 0 {
		return configErr("particle.size", p.Size.String(), "must not be negative")
	}
	if p.Opacity.Min < 0 || p.Opacity.Max > 1 {
		return configErr("particle.opacity", p.Opacity.String(), "must be within [0, 1]")
	}
	if p.Spread < 0 {
		return configErr("particle.spread", p.Spread, "must not be negative")
	}
	if p.Uniform && bounds.Empty() {
		return configErr("particle.uniform", p.Uniform, "uniform spawn needs non-empty bounds")
	}
	if _, ok := particle.Interpolation(p.Ease); !ok {
		return configErr("particle.ease", p.Ease, "unknown easing")
	}
	for i, hex := range p.Palette {
		if _, err := colorful.Hex(hex); err != nil {
			return configErr(fmt.Sprintf("particle.palette[%d]", i), hex, "not a #rrggbb colour")
		}
	}
	if p.FadeTo != "" {
		if _, err := colorful.Hex(p.FadeTo); err != nil {
			return configErr("particle.fadeTo", p.FadeTo, "not a #rrggbb colour")
		}
	}
	return nil
}

// Factory 把声明式参数编译成 ParamsFactory，调用前必须已通过校验
func (p ParticleSpec) Factory() ParamsFactory {
	palette := make([]colorful.Color, 0, len(p.Palette))
	for _, hex := range p.Palette {
		c, _ := colorful.Hex(hex)
		palette = append(palette, c)
	}
	if len(palette) == 0 {
		palette = append(palette, colorful.Color{R: 1, G: 1, B: 1})
	}
	var fade *colorful.Color
	if p.FadeTo != "" {
		c, _ := colorful.Hex(p.FadeTo)
		fade = &c
	}
	opacity := p.Opacity
	if opacity.IsZero() {
		opacity = particle.Fixed(1)
	}

	return func(r utils.Random, origin utils.Vec2, bounds utils.Rect) ParticleParams {
		start := palette[r.Intn(len(palette))]
		end := start
		if fade != nil {
			end = *fade
		}

		pos := origin
		if p.Uniform {
			pos = utils.Vec2{
				X: bounds.X + r.Float64()*bounds.Width,
				Y: bounds.Y + r.Float64()*bounds.Height,
			}
		} else if p.Spread > 0 {
			pos = pos.Add(utils.Vec2{X: utils.RandomSpread(r, p.Spread), Y: utils.RandomSpread(r, p.Spread)})
		}

		var vel utils.Vec2
		if speed := p.Speed.Sample(r); speed != 0 {
			angle := r.Float64() * 2 * math.Pi
			if !p.Direction.IsZero() {
				angle = p.Direction.Sample(r) * math.Pi / 180
			}
			vel = utils.Vec2{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
		}

		params := ParticleParams{
			Position:   pos,
			Velocity:   vel,
			StartColor: start,
			EndColor:   end,
			Size:       p.Size.Sample(r),
			Opacity:    opacity.Sample(r),
			MaxAge:     time.Duration(p.Life.Sample(r) * float64(time.Millisecond)),
			CurveEase:  p.Ease,
		}
		if !p.Scale.IsZero() {
			params.ScaleCurve = p.Scale.SampleCurve(r)
		}
		if !p.Alpha.IsZero() {
			params.OpacityCurve = p.Alpha.SampleCurve(r)
		}
		return params
	}
}

// Particle 粒子快照，供宿主绘制
type Particle struct {
	ID       uint64
	Position utils.Vec2
	Size     float64
	Scale    float64
	Opacity  float64
	Color    colorful.Color
	Age      time.Duration
	MaxAge   time.Duration
}

// EmitterStats 发射器统计
type EmitterStats struct {
	Live      int
	Spawned   int
	Evicted   int
	Skipped   int
	Throttled int
}

// Emitter 粒子发射器句柄
type Emitter struct {
	engine *Engine
	id     ecs.EntityID
	key    string
	sub    *signal.Subscription

	disposed bool
}

// CreateEmitter 创建粒子发射器
func (e *Engine) CreateEmitter(cfg EmitterConfig) (*Emitter, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if err := cfg.Validate(); err != nil {
		e.logger.Warn("emitter config rejected", zap.String("key", cfg.Key), zap.Error(err))
		return nil, err
	}
	factory := cfg.Factory
	if factory == nil {
		factory = cfg.Particle.Factory()
	}
	drag := cfg.Drag
	if drag == 0 {
		drag = 1
	}

	em := e.entityManager
	id := em.CreateEntity()
	h := &Emitter{engine: e, id: id, key: newKey("emitter", cfg.Key)}
	comp := &components.EmitterComponent{
		Key:           h.key,
		Mode:          cfg.Mode,
		Cap:           cfg.Cap,
		MinInterval:   cfg.MinInterval,
		Policy:        cfg.Policy,
		Factory:       factory,
		Origin:        cfg.Origin,
		Bounds:        cfg.Bounds,
		Wrap:          cfg.Wrap,
		Drag:          drag,
		RepelRadius:   cfg.RepelRadius,
		RepelStrength: cfg.RepelStrength,
	}
	ecs.AddComponent(em, id, comp)

	if cfg.Mode == EmitPointer || cfg.RepelRadius > 0 {
		h.sub = e.hub.Subscribe(signal.KindPointer, h.onPointer)
	}
	e.emitters[id] = h

	e.logger.Debug("emitter created",
		zap.String("key", h.key),
		zap.Stringer("mode", cfg.Mode),
		zap.Int("cap", cfg.Cap),
		zap.Stringer("policy", cfg.Policy))
	return h, nil
}

func (h *Emitter) onPointer(sig signal.Signal) {
	comp, ok := ecs.GetComponent[*components.EmitterComponent](h.engine.entityManager, h.id)
	if !ok {
		return
	}
	comp.Pointer = sig.Pointer
	comp.HasPointer = true
	comp.PointerMoved = true
}

func (h *Emitter) errDisposed(op string) error {
	return fmt.Errorf("emitter %s: %s: %w", h.key, op, ErrDisposed)
}

func (h *Emitter) component() *components.EmitterComponent {
	comp, _ := ecs.GetComponent[*components.EmitterComponent](h.engine.entityManager, h.id)
	return comp
}

// Key 发射器标识
func (h *Emitter) Key() string {
	return h.key
}

// Disposed 是否已释放
func (h *Emitter) Disposed() bool {
	return h.disposed
}

// Spawn 在 origin 请求生成一个粒子（受节流和上限约束）
func (h *Emitter) Spawn(origin utils.Vec2) (SpawnResult, error) {
	if h.disposed {
		return SpawnSkipped, h.errDisposed("spawn")
	}
	if h.engine.Degraded() {
		return SpawnSkipped, nil
	}
	return h.engine.scheduler.Particles().Spawn(h.id, h.engine.Now(), origin), nil
}

// Burst 一次生成 n 个粒子，返回实际生成数
func (h *Emitter) Burst(origin utils.Vec2, n int) (int, error) {
	if h.disposed {
		return 0, h.errDisposed("burst")
	}
	if n < 0 {
		return 0, configErr("burst", n, "must not be negative")
	}
	if h.engine.Degraded() {
		return 0, nil
	}
	return h.engine.scheduler.Particles().Burst(h.id, h.engine.Now(), origin, n), nil
}

// Count 存活粒子数
func (h *Emitter) Count() (int, error) {
	if h.disposed {
		return 0, h.errDisposed("count")
	}
	return len(h.component().Particles), nil
}

// Particles 存活粒子快照，按生成顺序排列
func (h *Emitter) Particles() ([]Particle, error) {
	if h.disposed {
		return nil, h.errDisposed("particles")
	}
	em := h.engine.entityManager
	comp := h.component()
	out := make([]Particle, 0, len(comp.Particles))
	for _, pid := range comp.Particles {
		p, ok := ecs.GetComponent[*components.ParticleComponent](em, pid)
		if !ok {
			continue
		}
		out = append(out, Particle{
			ID:       uint64(pid),
			Position: p.Position,
			Size:     p.Size,
			Scale:    p.Scale,
			Opacity:  p.Opacity,
			Color:    p.Color,
			Age:      p.Age,
			MaxAge:   p.MaxAge,
		})
	}
	return out, nil
}

// Stats 累计统计
func (h *Emitter) Stats() (EmitterStats, error) {
	if h.disposed {
		return EmitterStats{}, h.errDisposed("stats")
	}
	comp := h.component()
	return EmitterStats{
		Live:      len(comp.Particles),
		Spawned:   comp.Spawned,
		Evicted:   comp.Evicted,
		Skipped:   comp.Skipped,
		Throttled: comp.Throttled,
	}, nil
}

// SetOrigin 移动自动发射的发射点
func (h *Emitter) SetOrigin(origin utils.Vec2) error {
	if h.disposed {
		return h.errDisposed("set origin")
	}
	h.component().Origin = origin
	return nil
}

// SetBounds 更新回绕区域（窗口尺寸变化时）
func (h *Emitter) SetBounds(bounds utils.Rect) error {
	if h.disposed {
		return h.errDisposed("set bounds")
	}
	comp := h.component()
	if comp.Wrap && bounds.Empty() {
		return configErr("bounds", bounds, "wrap needs non-empty bounds")
	}
	comp.Bounds = bounds
	return nil
}

// Dispose 立即移除所有粒子并注销监听
// 重复调用无副作用
func (h *Emitter) Dispose() {
	if h.disposed {
		return
	}
	h.disposed = true
	if h.sub != nil {
		h.sub.Cancel()
		h.sub = nil
	}
	e := h.engine
	e.scheduler.Particles().Clear(h.id)
	e.entityManager.DestroyEntity(h.id)
	delete(e.emitters, h.id)
	e.logger.Debug("emitter disposed", zap.String("key", h.key))
}
