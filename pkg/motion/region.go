package motion

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/systems"
	"github.com/decker502/studyjam/pkg/utils"
)

// Region 一个动画区域的句柄
//
// 除 Dispose 和 Key 外，释放后的任何调用都返回包装了 ErrDisposed 的错误。
type Region struct {
	engine *Engine
	id     ecs.EntityID
	key    string
	subs   []*signal.Subscription

	disposed bool
}

// CreateAnimatedRegion 创建磁吸浮动容器
func (e *Engine) CreateAnimatedRegion(opts Options) (*Region, error) {
	spec, err := Magnetic(opts)
	if err != nil {
		e.logger.Warn("animated region rejected", zap.String("key", opts.Key), zap.Error(err))
		return nil, err
	}
	return e.CreateRegion(spec)
}

// CreateRegion 按 Spec 创建区域
// 配置在这里一次性校验，错误为 *ConfigError
func (e *Engine) CreateRegion(spec Spec) (*Region, error) {
	if e.closed {
		return nil, ErrClosed
	}
	built, err := spec.build()
	if err != nil {
		e.logger.Warn("region spec rejected", zap.String("key", spec.Key), zap.Error(err))
		return nil, err
	}

	em := e.entityManager
	id := em.CreateEntity()
	r := &Region{engine: e, id: id, key: newKey("region", spec.Key)}

	built.region.Key = r.key
	built.region.Mounted = e.scheduler.Now()
	ecs.AddComponent(em, id, built.region)
	ecs.AddComponent(em, id, built.input)
	ecs.AddComponent(em, id, built.bindings)
	ecs.AddComponent(em, id, built.motion)
	ecs.AddComponent(em, id, built.timelines)
	ecs.AddComponent(em, id, &components.OutputComponent{})

	// 从最近一次分发的信号初始化，避免新区域在下一次输入前处于中性状态
	if built.usesPointer {
		if sig, ok := e.hub.Latest(signal.KindPointer); ok {
			built.input.Pointer = sig.Pointer
			built.input.HasPointer = true
		}
		r.subs = append(r.subs, e.hub.Subscribe(signal.KindPointer, r.onPointer))
	}
	if built.input.Scroll != nil {
		if sig, ok := e.hub.Latest(signal.KindScroll); ok {
			built.input.Scroll.Update(sig.ScrollY)
		} else {
			built.input.Scroll.Update(0)
		}
		r.subs = append(r.subs, e.hub.Subscribe(signal.KindScroll, r.onScroll))
	}

	e.regions[id] = r
	e.scheduler.Refresh(id)
	e.scheduler.MarkDirty(id)
	r.updateVisibility(built.region, built.timelines)

	e.logger.Debug("region created",
		zap.String("key", r.key),
		zap.Int("bindings", len(built.bindings.Bindings)+len(built.bindings.Derived)),
		zap.Int("loops", len(built.timelines.Loops)),
		zap.Int("subscriptions", len(r.subs)))
	return r, nil
}

func (r *Region) onPointer(sig signal.Signal) {
	input, ok := ecs.GetComponent[*components.InputComponent](r.engine.entityManager, r.id)
	if !ok {
		return
	}
	input.Pointer = sig.Pointer
	input.HasPointer = true
	r.engine.scheduler.MarkDirty(r.id)
}

func (r *Region) onScroll(sig signal.Signal) {
	input, ok := ecs.GetComponent[*components.InputComponent](r.engine.entityManager, r.id)
	if !ok || input.Scroll == nil {
		return
	}
	input.Scroll.Update(sig.ScrollY)
	r.engine.scheduler.MarkDirty(r.id)
}

// updateVisibility 可见时启动循环动画，并在第一次可见时播放 enter 过渡
func (r *Region) updateVisibility(region *components.RegionComponent, tl *components.TimelineComponent) {
	sched := r.engine.scheduler
	if region.Visible && !region.Entered {
		region.Entered = true
		if _, ok := tl.Transitions[enterTransition]; ok {
			sched.Trigger(r.id, enterTransition)
		}
	}
	if systems.HasVisibleLoops(region, tl) {
		sched.Activate(r.id)
	}
}

func (r *Region) errDisposed(op string) error {
	return fmt.Errorf("region %s: %s: %w", r.key, op, ErrDisposed)
}

func (r *Region) comps() (*components.RegionComponent, *components.InputComponent) {
	em := r.engine.entityManager
	region, _ := ecs.GetComponent[*components.RegionComponent](em, r.id)
	input, _ := ecs.GetComponent[*components.InputComponent](em, r.id)
	return region, input
}

// Key 区域标识（释放后仍可读取）
func (r *Region) Key() string {
	return r.key
}

// Disposed 是否已释放
func (r *Region) Disposed() bool {
	return r.disposed
}

// Output 本帧的通道值
// 降级后返回静态的最终值
func (r *Region) Output() (Output, error) {
	if r.disposed {
		return Output{}, r.errDisposed("output")
	}
	em := r.engine.entityManager
	region, _ := ecs.GetComponent[*components.RegionComponent](em, r.id)
	out, _ := ecs.GetComponent[*components.OutputComponent](em, r.id)
	return outputFrom(out.Values, region.Order), nil
}

// Target 通道当前的目标偏移（相对中性值）
func (r *Region) Target(ch Channel) (float64, error) {
	if r.disposed {
		return 0, r.errDisposed("target")
	}
	if !ch.Valid() {
		return 0, configErr("channel", ch, "unknown channel")
	}
	m, _ := ecs.GetComponent[*components.MotionComponent](r.engine.entityManager, r.id)
	return m.Channels[ch].Target, nil
}

// State 调度状态
func (r *Region) State() (RegionState, error) {
	if r.disposed {
		return RegionIdle, r.errDisposed("state")
	}
	region, _ := r.comps()
	return region.State, nil
}

// ScrollProgress 跟踪区间的当前进度，没有滚动区间时为 0
func (r *Region) ScrollProgress() (float64, error) {
	if r.disposed {
		return 0, r.errDisposed("scroll progress")
	}
	_, input := r.comps()
	if input.Scroll == nil {
		return 0, nil
	}
	return input.Scroll.Progress, nil
}

// SetBounds 更新布局测量结果
// 空矩形表示尚未布局，指针输入按中性处理
func (r *Region) SetBounds(bounds utils.Rect) error {
	if r.disposed {
		return r.errDisposed("set bounds")
	}
	region, _ := r.comps()
	region.Bounds = bounds
	region.Measured = !bounds.Empty()
	r.engine.scheduler.MarkDirty(r.id)
	return nil
}

// ClearBounds 元素被移出布局
func (r *Region) ClearBounds() error {
	return r.SetBounds(utils.Rect{})
}

// SetVisible 切换可见性，隐藏的区域不播放循环动画
func (r *Region) SetVisible(visible bool) error {
	if r.disposed {
		return r.errDisposed("set visible")
	}
	region, _ := r.comps()
	if region.Visible == visible {
		return nil
	}
	region.Visible = visible
	tl, _ := ecs.GetComponent[*components.TimelineComponent](r.engine.entityManager, r.id)
	r.updateVisibility(region, tl)
	// 隐藏时需要再跑一帧把循环偏移清零
	r.engine.scheduler.Activate(r.id)
	return nil
}

// SetInput 设置 SourceInput 的值（开关、选中状态等离散输入）
func (r *Region) SetInput(v float64) error {
	if r.disposed {
		return r.errDisposed("set input")
	}
	if !finite(v) {
		return configErr("input", v, "must be finite")
	}
	_, input := r.comps()
	input.Input = v
	r.engine.scheduler.MarkDirty(r.id)
	return nil
}

// Trigger 播放命名过渡，同名过渡正在播放时从头开始
func (r *Region) Trigger(name string) error {
	if r.disposed {
		return r.errDisposed("trigger " + name)
	}
	if !r.engine.scheduler.Trigger(r.id, name) {
		return fmt.Errorf("region %s: %q: %w", r.key, name, ErrUnknownTransition)
	}
	return nil
}

// Dispose 同步注销所有监听并从所有集合中移除
// 重复调用无副作用
func (r *Region) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	for _, sub := range r.subs {
		sub.Cancel()
	}
	r.subs = nil

	e := r.engine
	e.scheduler.Remove(r.id)
	e.entityManager.DestroyEntity(r.id)
	delete(e.regions, r.id)
	e.logger.Debug("region disposed", zap.String("key", r.key))
}
