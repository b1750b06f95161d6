package motion

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/systems"
	"github.com/decker502/studyjam/pkg/utils"
)

// Engine 运动引擎
//
// 持有唯一的信号中心、调度器和实体存储。
// Engine 不是并发安全的：所有调用都应发生在宿主的帧 goroutine 上。
type Engine struct {
	surface       signal.Surface
	hub           *signal.Hub
	entityManager *ecs.EntityManager
	scheduler     *systems.Scheduler
	logger        *zap.Logger

	regions  map[ecs.EntityID]*Region
	emitters map[ecs.EntityID]*Emitter

	closed bool
}

type engineOptions struct {
	logger        *zap.Logger
	random        utils.Random
	integrator    Integrator
	maxFrameDelta time.Duration
}

// EngineOption 配置 Engine
type EngineOption func(*engineOptions)

// WithLogger 设置日志，默认不输出
func WithLogger(logger *zap.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = logger }
}

// WithRandom 注入随机数源，测试时传入固定种子
func WithRandom(r utils.Random) EngineOption {
	return func(o *engineOptions) { o.random = r }
}

// WithIntegrator 替换弹簧积分器（默认半隐式欧拉）
func WithIntegrator(integrator Integrator) EngineOption {
	return func(o *engineOptions) { o.integrator = integrator }
}

// WithMaxFrameDelta 单帧步长上限
func WithMaxFrameDelta(d time.Duration) EngineOption {
	return func(o *engineOptions) { o.maxFrameDelta = d }
}

// NewEngine 创建引擎
// surface 为 nil 时使用 ManualSurface（无头模式）
func NewEngine(surface signal.Surface, opts ...EngineOption) *Engine {
	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if surface == nil {
		surface = signal.NewManualSurface()
	}

	em := ecs.NewEntityManager()
	hub := signal.NewHub(surface, o.logger.Named("signal"))
	return &Engine{
		surface:       surface,
		hub:           hub,
		entityManager: em,
		scheduler: systems.NewScheduler(em, hub, systems.SchedulerConfig{
			Integrator:    o.integrator,
			Random:        o.random,
			Logger:        o.logger.Named("scheduler"),
			MaxFrameDelta: o.maxFrameDelta,
		}),
		logger:   o.logger,
		regions:  make(map[ecs.EntityID]*Region),
		emitters: make(map[ecs.EntityID]*Emitter),
	}
}

// Frame 执行一帧，now 为宿主时钟（单调递增）
func (e *Engine) Frame(now time.Duration) {
	if e.closed {
		return
	}
	e.scheduler.Frame(now)
}

// Surface 引擎使用的输入表面
func (e *Engine) Surface() signal.Surface {
	return e.surface
}

// Hub 信号中心，文字特效等时钟订阅者通过它接入
func (e *Engine) Hub() *signal.Hub {
	return e.hub
}

// Now 最近一帧的时间
func (e *Engine) Now() time.Duration {
	return e.scheduler.Now()
}

// ActiveCount 本帧仍在推进的区域数
func (e *Engine) ActiveCount() int {
	return e.scheduler.ActiveCount()
}

// Regions 存活的区域数
func (e *Engine) Regions() int {
	return len(e.regions)
}

// Emitters 存活的发射器数
func (e *Engine) Emitters() int {
	return len(e.emitters)
}

// Degraded 引擎是否已降级为静态输出
func (e *Engine) Degraded() bool {
	return e.scheduler.Degraded()
}

// Err 导致降级的错误
func (e *Engine) Err() error {
	return e.scheduler.Err()
}

// Close 释放所有区域、发射器和全局监听
// 重复调用无副作用
func (e *Engine) Close() {
	if e.closed {
		return
	}
	for _, id := range sortedHandles(e.regions) {
		e.regions[id].Dispose()
	}
	for _, id := range sortedHandles(e.emitters) {
		e.emitters[id].Dispose()
	}
	e.hub.Close()
	e.closed = true
	e.logger.Debug("engine closed")
}

func sortedHandles[T any](m map[ecs.EntityID]T) []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func newKey(prefix, key string) string {
	if key != "" {
		return key
	}
	return prefix + "-" + uuid.NewString()[:8]
}
