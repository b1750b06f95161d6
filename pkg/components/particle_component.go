package components

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/utils"
)

// ParticleComponent represents a single particle instance.
// It stores all the runtime state for an individual particle: position,
// velocity, visual properties and lifecycle information.
//
// Particles are created and removed by the ParticleSystem; Age never exceeds
// MaxAge because the particle is destroyed in the same tick it reaches it.
//
// This is a pure data component following ECS principles - it contains no methods.
type ParticleComponent struct {
	// 所属发射器
	Emitter ecs.EntityID

	// Position / Velocity (像素, 像素/秒)
	Position utils.Vec2
	Velocity utils.Vec2

	// 颜色在 Lab 空间从 StartColor 过渡到 EndColor
	Color      colorful.Color
	StartColor colorful.Color
	EndColor   colorful.Color

	Size  float64 // 直径（像素）
	Scale float64 // 尺寸倍数，ScaleCurve 为空时为 1

	// Transparency (透明度, 0-1)
	Opacity     float64
	BaseOpacity float64

	// Lifecycle (生命周期)
	Age    time.Duration
	MaxAge time.Duration

	// 可选的生命周期曲线（时间归一化到 0-1）
	ScaleCurve   []particle.Keyframe
	OpacityCurve []particle.Keyframe
	CurveEase    string
}
