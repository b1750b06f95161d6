package components

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/utils"
)

// OverflowPolicy 达到数量上限时的处理方式
type OverflowPolicy int

const (
	// PolicySkip 放弃本次生成（背景、环境粒子）
	PolicySkip OverflowPolicy = iota
	// PolicyEvictOldest 移除最早生成的粒子（光标拖尾）
	PolicyEvictOldest
)

func (p OverflowPolicy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyEvictOldest:
		return "evictOldest"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// EmitterMode 发射方式
type EmitterMode int

const (
	// EmitPointer 指针移动时生成（受节流限制）
	EmitPointer EmitterMode = iota
	// EmitAutonomous 每帧尝试在 Origin 生成（受节流限制）
	EmitAutonomous
	// EmitBurst 只在显式调用 Burst 时生成
	EmitBurst
)

func (m EmitterMode) String() string {
	switch m {
	case EmitPointer:
		return "pointer"
	case EmitAutonomous:
		return "autonomous"
	case EmitBurst:
		return "burst"
	default:
		return fmt.Sprintf("EmitterMode(%d)", int(m))
	}
}

// ParticleParams 单个粒子的初始参数
type ParticleParams struct {
	Position   utils.Vec2
	Velocity   utils.Vec2
	StartColor colorful.Color
	EndColor   colorful.Color
	Size       float64
	Opacity    float64
	MaxAge     time.Duration

	ScaleCurve   []particle.Keyframe
	OpacityCurve []particle.Keyframe
	CurveEase    string
}

// ParamsFactory 根据随机源、发射点和发射器当前区域生成粒子参数
// 所有随机性都来自 r，测试传入固定种子即可复现完整的生成序列
type ParamsFactory func(r utils.Random, origin utils.Vec2, bounds utils.Rect) ParticleParams

// EmitterComponent 粒子发射器
//
// This is a pure data component following ECS principles - it contains no methods.
type EmitterComponent struct {
	Key string

	Mode        EmitterMode
	Cap         int
	MinInterval time.Duration
	Policy      OverflowPolicy
	Factory     ParamsFactory

	Origin utils.Vec2

	// 环境粒子越界后从另一侧回绕
	Bounds utils.Rect
	Wrap   bool

	// Drag 每秒保留的速度比例（1 = 无阻力）
	Drag float64

	// 指针排斥场：半径内受到 (R-d)/R*Strength 的推力
	RepelRadius   float64
	RepelStrength float64

	Pointer      utils.Vec2
	HasPointer   bool
	PointerMoved bool

	LastSpawn  time.Duration
	HasSpawned bool

	// Particles 存活粒子，按生成顺序排列（最早的在前）
	Particles []ecs.EntityID

	// 统计
	Spawned   int
	Evicted   int
	Skipped   int
	Throttled int
}
