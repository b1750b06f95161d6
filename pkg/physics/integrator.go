package physics

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Integrator advances a spring by dt seconds.
type Integrator interface {
	Integrate(s *Spring, dt float64)
}

// EulerIntegrator 半隐式欧拉积分（默认）
type EulerIntegrator struct{}

// Integrate 推进弹簧
func (EulerIntegrator) Integrate(s *Spring, dt float64) {
	s.Step(dt)
}

// HarmonicaIntegrator 使用 harmonica 的解析解推进弹簧
//
// harmonica 的系数与步长绑定，这里按固定帧率分段推进，余下的不足一帧的时间单独求系数。
// 刚度/阻尼换算：ω = √k，ζ = c / (2√k)。
type HarmonicaIntegrator struct {
	FPS int

	cache map[harmonicaKey]harmonica.Spring
}

// harmonicaKey 系数同时取决于弹簧参数和步长，FPS 修改后旧系数不再命中
type harmonicaKey struct {
	params SpringParams
	step   float64
}

// NewHarmonicaIntegrator 创建解析积分器，fps <= 0 时使用 120
func NewHarmonicaIntegrator(fps int) *HarmonicaIntegrator {
	if fps <= 0 {
		fps = 120
	}
	return &HarmonicaIntegrator{
		FPS:   fps,
		cache: make(map[harmonicaKey]harmonica.Spring),
	}
}

func harmonicaSpring(step float64, p SpringParams) harmonica.Spring {
	omega := math.Sqrt(p.Stiffness)
	zeta := p.Damping / (2 * omega)
	return harmonica.NewSpring(step, omega, zeta)
}

// Integrate 推进弹簧
func (h *HarmonicaIntegrator) Integrate(s *Spring, dt float64) {
	if dt <= 0 {
		return
	}
	if h.cache == nil {
		h.cache = make(map[harmonicaKey]harmonica.Spring)
	}
	params := s.Params()
	step := harmonica.FPS(h.FPS)
	key := harmonicaKey{params: params, step: step}
	sp, ok := h.cache[key]
	if !ok {
		sp = harmonicaSpring(step, params)
		h.cache[key] = sp
	}

	n := int(dt / step)
	for i := 0; i < n; i++ {
		s.Position, s.Velocity = sp.Update(s.Position, s.Velocity, s.Target)
	}
	if rem := dt - float64(n)*step; rem > 1e-9 {
		s.Position, s.Velocity = harmonicaSpring(rem, params).Update(s.Position, s.Velocity, s.Target)
	}
}
