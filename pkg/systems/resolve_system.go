package systems

import (
	"math"

	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/utils"
)

// ResolveSystem 把区域最近的输入映射成各通道的目标值
//
// 弹簧通道只设置目标，由 SpringSystem 积分；
// 没有测量结果的区域，指针类输入一律视为中性。
type ResolveSystem struct {
	entityManager *ecs.EntityManager
}

// NewResolveSystem 创建目标解析系统
func NewResolveSystem(em *ecs.EntityManager) *ResolveSystem {
	return &ResolveSystem{entityManager: em}
}

// Resolve 重新计算一个区域的目标值
// 返回 true 表示有通道需要推进（目标与当前值相差超过静止阈值）
func (s *ResolveSystem) Resolve(id ecs.EntityID) bool {
	region, ok := ecs.GetComponent[*components.RegionComponent](s.entityManager, id)
	if !ok {
		return false
	}
	input, ok := ecs.GetComponent[*components.InputComponent](s.entityManager, id)
	if !ok {
		return false
	}
	bindings, ok := ecs.GetComponent[*components.BindingComponent](s.entityManager, id)
	if !ok {
		return false
	}
	motion, ok := ecs.GetComponent[*components.MotionComponent](s.entityManager, id)
	if !ok {
		return false
	}

	var targets [components.ChannelCount]float64
	for _, b := range bindings.Bindings {
		targets[b.Channel] += b.Curve.Eval(SourceValue(b.Source, region, input))
	}

	needsUpdate := false
	for ch := range motion.Channels {
		state := &motion.Channels[ch]
		state.Target = targets[ch]
		if math.Abs(state.Target-state.Value) > motion.RestDelta {
			needsUpdate = true
		}
		if state.Spring != nil && !state.Spring.Settled(motion.RestSpeed, motion.RestDelta) {
			needsUpdate = true
		}
	}
	return needsUpdate
}

// PointerDelta 指针相对区域中心的偏移，经过接近度门控
func PointerDelta(region *components.RegionComponent, input *components.InputComponent) utils.Vec2 {
	if !region.Measured || !input.HasPointer || region.Bounds.Empty() {
		return utils.Vec2{}
	}
	delta := input.Pointer.Sub(region.Bounds.Center())
	if input.Proximity != nil {
		delta = input.Proximity.Apply(delta)
	}
	return delta
}

// hovered 指针是否在区域内
func hovered(region *components.RegionComponent, input *components.InputComponent) bool {
	return region.Measured && input.HasPointer && !region.Bounds.Empty() && region.Bounds.Contains(input.Pointer)
}

// SourceValue 读取一个输入来源的当前值
// SourceDerived 不在这里计算，返回 0
func SourceValue(src components.Source, region *components.RegionComponent, input *components.InputComponent) float64 {
	switch src {
	case components.SourcePointerX:
		return PointerDelta(region, input).X
	case components.SourcePointerY:
		return PointerDelta(region, input).Y
	case components.SourceHoverX:
		if !hovered(region, input) {
			return 0
		}
		c := region.Bounds.Center()
		return utils.Clamp((input.Pointer.X-c.X)/(region.Bounds.Width/2), -1, 1)
	case components.SourceHoverY:
		if !hovered(region, input) {
			return 0
		}
		c := region.Bounds.Center()
		return utils.Clamp((input.Pointer.Y-c.Y)/(region.Bounds.Height/2), -1, 1)
	case components.SourceHover:
		if hovered(region, input) {
			return 1
		}
		return 0
	case components.SourceScroll:
		if input.Scroll == nil {
			return 0
		}
		return input.Scroll.Progress
	case components.SourceInput:
		return input.Input
	default:
		return 0
	}
}
