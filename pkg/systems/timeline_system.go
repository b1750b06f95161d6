package systems

import (
	"time"

	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
)

// TimelineSystem 推进循环动画和一次性过渡
//
// 循环动画是时钟的确定性函数，叠加在弹簧位移之上，从不覆盖它。
type TimelineSystem struct {
	entityManager *ecs.EntityManager
}

// NewTimelineSystem 创建时间轴系统
func NewTimelineSystem(em *ecs.EntityManager) *TimelineSystem {
	return &TimelineSystem{entityManager: em}
}

// Start 开始播放一个命名过渡
// 同名过渡正在播放时从头开始；返回 false 表示没有该过渡
func (s *TimelineSystem) Start(id ecs.EntityID, name string, now time.Duration) bool {
	tl, ok := ecs.GetComponent[*components.TimelineComponent](s.entityManager, id)
	if !ok {
		return false
	}
	tracks, ok := tl.Transitions[name]
	if !ok {
		return false
	}
	running := tl.Running[:0]
	for _, r := range tl.Running {
		if r.Name != name {
			running = append(running, r)
		}
	}
	tl.Running = append(running, components.RunningTransition{Name: name, Started: now, Tracks: tracks})
	return true
}

// HasVisibleLoops 区域可见且有未停止的循环动画
func HasVisibleLoops(region *components.RegionComponent, tl *components.TimelineComponent) bool {
	return region.Visible && !tl.LoopsStopped && len(tl.Loops) > 0
}

// Update 计算本帧时间轴偏移，返回区域是否仍有时间轴在播放
func (s *TimelineSystem) Update(id ecs.EntityID, now time.Duration) bool {
	region, ok := ecs.GetComponent[*components.RegionComponent](s.entityManager, id)
	if !ok {
		return false
	}
	tl, ok := ecs.GetComponent[*components.TimelineComponent](s.entityManager, id)
	if !ok {
		return false
	}

	tl.Offsets = [components.ChannelCount]float64{}

	loops := HasVisibleLoops(region, tl)
	if loops {
		elapsed := now - region.Mounted
		for _, b := range tl.Loops {
			tl.Offsets[b.Channel] += b.Track.Value(elapsed)
		}
	}

	running := tl.Running[:0]
	for _, r := range tl.Running {
		elapsed := now - r.Started
		done := true
		for _, b := range r.Tracks {
			if !b.Track.Done(elapsed) {
				done = false
				tl.Offsets[b.Channel] += b.Track.Value(elapsed)
			}
		}
		if !done {
			running = append(running, r)
		}
	}
	tl.Running = running

	return loops || len(tl.Running) > 0
}

// Stop 停止所有时间轴，偏移归零
func (s *TimelineSystem) Stop(id ecs.EntityID) {
	tl, ok := ecs.GetComponent[*components.TimelineComponent](s.entityManager, id)
	if !ok {
		return
	}
	tl.Running = nil
	tl.LoopsStopped = true
	tl.Offsets = [components.ChannelCount]float64{}
}
