// Package physics 提供运动引擎的数值基础：弹簧积分、区间映射、接近度衰减和时间轴。
//
// 所有函数都是纯计算，不持有全局状态，可以在测试中直接调用。
package physics

import (
	"fmt"
	"math"
)

const (
	// MaxSubstep 单个积分子步的上限（秒）
	MaxSubstep = 1.0 / 120.0

	// DefaultRestSpeed 默认静止速度阈值 (vEps)
	DefaultRestSpeed = 0.01
	// DefaultRestDelta 默认静止位移阈值 (pEps)
	DefaultRestDelta = 0.01
)

// SpringParams 弹簧常数（单位质量）
type SpringParams struct {
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

// Validate 检查弹簧常数
// 刚度必须为正；阻尼允许为 0（无阻尼振荡），但不能为负
func (p SpringParams) Validate(field string) error {
	if math.IsNaN(p.Stiffness) || p.Stiffness <= 0 {
		return configErr(field+".stiffness", p.Stiffness, "must be positive")
	}
	if math.IsNaN(p.Damping) || p.Damping < 0 {
		return configErr(field+".damping", p.Damping, "must not be negative")
	}
	return nil
}

// String 便于日志输出
func (p SpringParams) String() string {
	return fmt.Sprintf("k=%g c=%g", p.Stiffness, p.Damping)
}

// CriticalDamping 返回单位质量弹簧的临界阻尼 2√k
func CriticalDamping(stiffness float64) float64 {
	return 2 * math.Sqrt(stiffness)
}

// Spring 一个标量通道的弹簧状态
type Spring struct {
	Position  float64
	Velocity  float64
	Target    float64
	Stiffness float64
	Damping   float64
}

// NewSpring 创建静止在 position 的弹簧
func NewSpring(params SpringParams, position float64) *Spring {
	return &Spring{
		Position:  position,
		Target:    position,
		Stiffness: params.Stiffness,
		Damping:   params.Damping,
	}
}

// Params 返回弹簧常数
func (s *Spring) Params() SpringParams {
	return SpringParams{Stiffness: s.Stiffness, Damping: s.Damping}
}

// Substep 返回该弹簧允许的最大子步长
// 半隐式欧拉在 h·(c+√k) 较大时会发散，因此子步取 min(1/120, 0.5/(c+√k))
func (s *Spring) Substep() float64 {
	limit := 0.5 / (s.Damping + math.Sqrt(s.Stiffness))
	return math.Min(MaxSubstep, limit)
}

// Step 用半隐式欧拉推进 dt 秒
//
//	velocity += (k·(target-position) - c·velocity)·h
//	position += velocity·h
func (s *Spring) Step(dt float64) {
	if dt <= 0 {
		return
	}
	h := s.Substep()
	n := int(math.Ceil(dt / h))
	h = dt / float64(n)
	for i := 0; i < n; i++ {
		accel := s.Stiffness*(s.Target-s.Position) - s.Damping*s.Velocity
		s.Velocity += accel * h
		s.Position += s.Velocity * h
	}
}

// Settled 判断是否静止：|v| < vEps 且 |x - target| < pEps
func (s *Spring) Settled(vEps, pEps float64) bool {
	return math.Abs(s.Velocity) < vEps && math.Abs(s.Position-s.Target) < pEps
}

// Snap 直接停在目标上
func (s *Spring) Snap() {
	s.Position = s.Target
	s.Velocity = 0
}
