package physics

import (
	"math"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/utils"
)

// Remap performs a clamped affine remap of v from [inMin, inMax] to [outMin, outMax].
//
// A degenerate domain (inMin == inMax) returns the midpoint of the output range.
// Inverted output ranges are legal and produce a decreasing mapping.
func Remap(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMin == inMax {
		return (outMin + outMax) / 2
	}
	lo, hi := inMin, inMax
	if lo > hi {
		lo, hi = hi, lo
	}
	v = utils.Clamp(v, lo, hi)
	return outMin + (v-inMin)/(inMax-inMin)*(outMax-outMin)
}

// Curve 多段分段映射曲线
// Domain 递增，Range 与之一一对应；段内使用 Ease 插值，区间外取端点值
type Curve struct {
	Domain []float64
	Range  []float64
	Ease   string

	ease utils.EasingFunc
}

// NewCurve 创建并校验曲线
// 域必须非递减，长度一致且至少两个点，缓动名必须已知
func NewCurve(domain, rng []float64, ease string) (Curve, error) {
	if len(domain) < 2 {
		return Curve{}, configErr("curve.domain", domain, "needs at least two stops")
	}
	if len(domain) != len(rng) {
		return Curve{}, configErr("curve.range", rng, "length must match domain")
	}
	for i, v := range domain {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Curve{}, configErr("curve.domain", domain, "must be finite")
		}
		if i > 0 && v < domain[i-1] {
			return Curve{}, configErr("curve.domain", domain, "inverted domain (inMin > inMax)")
		}
	}
	for _, v := range rng {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Curve{}, configErr("curve.range", rng, "must be finite")
		}
	}
	fn, ok := particle.Interpolation(ease)
	if !ok {
		return Curve{}, configErr("curve.ease", ease, "unknown easing")
	}
	return Curve{
		Domain: append([]float64(nil), domain...),
		Range:  append([]float64(nil), rng...),
		Ease:   ease,
		ease:   fn,
	}, nil
}

// Linear 两点线性映射
func Linear(inMin, inMax, outMin, outMax float64) (Curve, error) {
	return NewCurve([]float64{inMin, inMax}, []float64{outMin, outMax}, "")
}

// MustLinear 用于内置预设等常量场景，参数错误时 panic
func MustLinear(inMin, inMax, outMin, outMax float64) Curve {
	c, err := Linear(inMin, inMax, outMin, outMax)
	if err != nil {
		panic(err)
	}
	return c
}

// MustCurve 同 NewCurve，错误时 panic
func MustCurve(domain, rng []float64, ease string) Curve {
	c, err := NewCurve(domain, rng, ease)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero 未配置的曲线
func (c Curve) IsZero() bool {
	return len(c.Domain) == 0
}

// Eval 计算 v 处的曲线值
func (c Curve) Eval(v float64) float64 {
	n := len(c.Domain)
	if n == 0 {
		return v
	}
	first, last := c.Domain[0], c.Domain[n-1]
	if first == last {
		return (c.Range[0] + c.Range[n-1]) / 2
	}
	if v <= first {
		return c.Range[0]
	}
	if v >= last {
		return c.Range[n-1]
	}
	ease := c.ease
	if ease == nil {
		ease = utils.EaseLinear
	}
	for i := 0; i < n-1; i++ {
		d0, d1 := c.Domain[i], c.Domain[i+1]
		if v >= d0 && v <= d1 {
			if d1 == d0 {
				return c.Range[i+1]
			}
			ratio := ease((v - d0) / (d1 - d0))
			return utils.Lerp(c.Range[i], c.Range[i+1], ratio)
		}
	}
	return c.Range[n-1]
}
