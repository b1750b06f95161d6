package systems

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/physics"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/utils"
)

// DefaultMaxFrameDelta 单帧时间上限，切回标签页等长间隔不会让弹簧一步跨太远
const DefaultMaxFrameDelta = 60 * time.Millisecond

// Scheduler 驱动每帧的更新循环
//
// 每帧严格按以下顺序执行：
//  1. 分发信号（合并后的指针/滚动 + 时钟）
//  2. 重新解析收到输入的区域的目标值
//  3. 推进时间轴
//  4. 积分弹簧
//  5. 合成输出与派生通道
//  6. 粒子生命周期
//  7. 静止的区域回到 Idle
//
// 只有 Active 区域参与 3-7；Idle 区域不消耗任何帧时间。
type Scheduler struct {
	entityManager *ecs.EntityManager
	hub           *signal.Hub
	logger        *zap.Logger

	resolve   *ResolveSystem
	timelines *TimelineSystem
	springs   *SpringSystem
	outputs   *OutputSystem
	particles *ParticleSystem

	active map[ecs.EntityID]struct{}
	dirty  map[ecs.EntityID]struct{}

	maxDelta time.Duration
	now      time.Duration
	started  bool

	degraded bool
	err      error
}

// SchedulerConfig 调度器依赖
type SchedulerConfig struct {
	Integrator    physics.Integrator
	Random        utils.Random
	Logger        *zap.Logger
	MaxFrameDelta time.Duration
}

// NewScheduler 创建调度器
func NewScheduler(em *ecs.EntityManager, hub *signal.Hub, cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Random == nil {
		cfg.Random = utils.NewSeededRandom(0)
	}
	if cfg.MaxFrameDelta <= 0 {
		cfg.MaxFrameDelta = DefaultMaxFrameDelta
	}
	return &Scheduler{
		entityManager: em,
		hub:           hub,
		logger:        cfg.Logger,
		resolve:       NewResolveSystem(em),
		timelines:     NewTimelineSystem(em),
		springs:       NewSpringSystem(em, cfg.Integrator),
		outputs:       NewOutputSystem(em),
		particles:     NewParticleSystem(em, cfg.Random, cfg.Logger.Named("particles")),
		active:        make(map[ecs.EntityID]struct{}),
		dirty:         make(map[ecs.EntityID]struct{}),
		maxDelta:      cfg.MaxFrameDelta,
	}
}

// Particles 粒子系统
func (s *Scheduler) Particles() *ParticleSystem {
	return s.particles
}

// Now 最近一帧的时间
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Degraded 是否已降级为静态输出
func (s *Scheduler) Degraded() bool {
	return s.degraded
}

// Err 导致降级的错误
func (s *Scheduler) Err() error {
	return s.err
}

// MarkDirty 区域收到了新输入，下一帧重新解析目标
func (s *Scheduler) MarkDirty(id ecs.EntityID) {
	if s.degraded {
		return
	}
	s.dirty[id] = struct{}{}
}

// Activate 立即把区域放入 Active 集合
func (s *Scheduler) Activate(id ecs.EntityID) {
	if s.degraded {
		return
	}
	region, ok := ecs.GetComponent[*components.RegionComponent](s.entityManager, id)
	if !ok {
		return
	}
	region.State = components.RegionActive
	s.active[id] = struct{}{}
}

// Trigger 开始播放区域的命名过渡
func (s *Scheduler) Trigger(id ecs.EntityID, name string) bool {
	if !s.timelines.Start(id, name, s.now) {
		return false
	}
	s.Activate(id)
	return true
}

// Remove 同步地从所有集合中移除区域
func (s *Scheduler) Remove(id ecs.EntityID) {
	delete(s.active, id)
	delete(s.dirty, id)
}

// IsActive 区域是否在 Active 集合中
func (s *Scheduler) IsActive(id ecs.EntityID) bool {
	_, ok := s.active[id]
	return ok
}

// ActiveCount Active 区域数量
func (s *Scheduler) ActiveCount() int {
	return len(s.active)
}

// Refresh 不经过积分直接重新合成一个区域的输出（用于创建时）
func (s *Scheduler) Refresh(id ecs.EntityID) {
	s.outputs.Update(id)
}

func (s *Scheduler) alive(id ecs.EntityID) bool {
	return ecs.HasComponent[*components.RegionComponent](s.entityManager, id)
}

func sortedIDs(set map[ecs.EntityID]struct{}) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// frameDelta 计算本帧步长并限制在 [0, maxDelta]
func (s *Scheduler) frameDelta(now time.Duration) time.Duration {
	if !s.started {
		s.started = true
		return 0
	}
	dt := now - s.now
	if dt < 0 {
		return 0
	}
	if dt > s.maxDelta {
		return s.maxDelta
	}
	return dt
}

// Frame 执行一帧
// 帧内的任何 panic 都会让调度器降级：所有区域停在最终状态，之后不再有动画
func (s *Scheduler) Frame(now time.Duration) {
	if s.degraded {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.degrade(fmt.Errorf("frame at %v: %v", now, r))
		}
	}()

	dt := s.frameDelta(now)
	s.now = now

	// 1. signals
	s.hub.Flush(now)

	// 2. resolve
	for _, id := range sortedIDs(s.dirty) {
		if !s.alive(id) {
			continue
		}
		if s.resolve.Resolve(id) {
			s.Activate(id)
		}
	}
	clear(s.dirty)

	ids := sortedIDs(s.active)
	busy := make([]bool, len(ids))
	settled := make([]bool, len(ids))

	// 3. timelines
	for i, id := range ids {
		if !s.alive(id) {
			delete(s.active, id)
			continue
		}
		busy[i] = s.timelines.Update(id, now)
	}

	// 4. springs
	secs := dt.Seconds()
	for i, id := range ids {
		if !s.alive(id) {
			continue
		}
		settled[i] = s.springs.Update(id, secs)
	}

	// 5. outputs
	for _, id := range ids {
		if !s.alive(id) {
			continue
		}
		s.outputs.Update(id)
	}

	// 6. particles
	s.particles.Update(now, dt)

	// 7. settle
	for i, id := range ids {
		if !s.alive(id) || busy[i] || !settled[i] {
			continue
		}
		s.springs.Snap(id)
		s.outputs.Update(id)
		if region, ok := ecs.GetComponent[*components.RegionComponent](s.entityManager, id); ok {
			region.State = components.RegionIdle
		}
		delete(s.active, id)
	}
}

// degrade 降级为静态输出：弹簧停在目标，时间轴停止，粒子清空
func (s *Scheduler) degrade(err error) {
	s.degraded = true
	s.err = err
	s.logger.Error("animation degraded to static output", zap.Error(err))

	for _, id := range ecs.GetEntitiesWith[*components.RegionComponent](s.entityManager) {
		region, _ := ecs.GetComponent[*components.RegionComponent](s.entityManager, id)
		region.Degraded = true
		region.State = components.RegionIdle
		s.timelines.Stop(id)
		s.springs.Snap(id)
		s.outputs.Update(id)
	}
	for _, id := range ecs.GetEntitiesWith[*components.EmitterComponent](s.entityManager) {
		s.particles.Clear(id)
	}
	clear(s.active)
	clear(s.dirty)
}
