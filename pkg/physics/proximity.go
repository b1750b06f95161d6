package physics

import (
	"fmt"
	"math"

	"github.com/decker502/studyjam/pkg/utils"
)

// Falloff 接近度衰减方式
type Falloff int

const (
	// FalloffHard 半径内原样通过，半径外归零（默认）
	FalloffHard Falloff = iota
	// FalloffSoft 按 1 - d/R 线性衰减
	FalloffSoft
)

func (f Falloff) String() string {
	switch f {
	case FalloffHard:
		return "hard"
	case FalloffSoft:
		return "soft"
	default:
		return fmt.Sprintf("Falloff(%d)", int(f))
	}
}

// ParseFalloff 解析预设文件中的衰减名称
func ParseFalloff(s string) (Falloff, error) {
	switch s {
	case "", "hard":
		return FalloffHard, nil
	case "soft":
		return FalloffSoft, nil
	default:
		return FalloffHard, configErr("falloff", s, "must be hard or soft")
	}
}

// Proximity 磁吸效果的距离门控
type Proximity struct {
	Radius  float64
	Falloff Falloff
}

// Validate 半径必须为正
func (p Proximity) Validate() error {
	if math.IsNaN(p.Radius) || p.Radius <= 0 {
		return configErr("thresholdRadius", p.Radius, "must be positive")
	}
	if p.Falloff != FalloffHard && p.Falloff != FalloffSoft {
		return configErr("falloff", p.Falloff, "unknown falloff")
	}
	return nil
}

// Apply 对指针相对中心的偏移做门控
// 硬截断：距离 < Radius 时原样返回，否则返回零向量
func (p Proximity) Apply(delta utils.Vec2) utils.Vec2 {
	d := delta.Len()
	if d >= p.Radius {
		return utils.Vec2{}
	}
	if p.Falloff == FalloffSoft {
		return delta.Scale(1 - d/p.Radius)
	}
	return delta
}
