package utils

import (
	"math/rand"
	"time"
)

// Random 可注入的随机数源
// 粒子参数、抖动偏移等都通过它取随机值，测试时传入固定种子即可复现生成序列
type Random interface {
	// Float64 返回 [0.0, 1.0) 区间的随机数
	Float64() float64
	// Intn 返回 [0, n) 区间的随机整数
	Intn(n int) int
}

// SeededRandom 基于标准库的带种子随机数源
type SeededRandom struct {
	rng *rand.Rand
}

// NewSeededRandom 创建带种子的随机数源
// 种子为 0 时使用当前时间
func NewSeededRandom(seed int64) *SeededRandom {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SeededRandom{rng: rand.New(rand.NewSource(seed))}
}

// Float64 返回 [0.0, 1.0) 区间的随机数
func (s *SeededRandom) Float64() float64 {
	return s.rng.Float64()
}

// Intn 返回 [0, n) 区间的随机整数
func (s *SeededRandom) Intn(n int) int {
	return s.rng.Intn(n)
}

// RandomInRange 返回 [min, max] 区间的随机数
// min >= max 时直接返回 min
func RandomInRange(r Random, min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + r.Float64()*(max-min)
}

// RandomSpread 返回以 0 为中心、总宽度为 spread 的随机偏移
// 对应网页端常见的 (Math.random() - 0.5) * spread
func RandomSpread(r Random, spread float64) float64 {
	return (r.Float64() - 0.5) * spread
}
