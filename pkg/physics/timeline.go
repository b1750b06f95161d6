package physics

import (
	"math"
	"time"

	"github.com/decker502/studyjam/internal/particle"
)

// Track 随时间变化的确定性曲线（循环浮动、一次性抖动等）
type Track interface {
	// Value 返回经过 elapsed 时间后的偏移值
	Value(elapsed time.Duration) float64
	// Done 非循环曲线播放完毕时返回 true
	Done(elapsed time.Duration) bool
	// Validate 检查配置
	Validate() error
}

// Timeline 关键帧时间轴
// Times 归一化到 [0, 1]，与 Values 一一对应
type Timeline struct {
	Times    []float64
	Values   []float64
	Ease     string
	Duration time.Duration
	Delay    time.Duration
	Repeat   bool

	keyframes []particle.Keyframe
}

// NewTimeline 创建并校验关键帧时间轴
func NewTimeline(times, values []float64, ease string, duration time.Duration, repeat bool) (*Timeline, error) {
	tl := &Timeline{
		Times:    append([]float64(nil), times...),
		Values:   append([]float64(nil), values...),
		Ease:     ease,
		Duration: duration,
		Repeat:   repeat,
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// EvenTimes 生成 n 个等间距的归一化时间点
func EvenTimes(n int) []float64 {
	if n < 2 {
		return []float64{0}
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / float64(n-1)
	}
	return times
}

// Validate 检查时间轴
func (tl *Timeline) Validate() error {
	if tl.Duration <= 0 {
		return configErr("duration", tl.Duration, "must be positive")
	}
	if tl.Delay < 0 {
		return configErr("delay", tl.Delay, "must not be negative")
	}
	if len(tl.Values) < 2 {
		return configErr("values", tl.Values, "needs at least two keyframes")
	}
	if len(tl.Times) != len(tl.Values) {
		return configErr("times", tl.Times, "length must match values")
	}
	for i, t := range tl.Times {
		if t < 0 || t > 1 || (i > 0 && t < tl.Times[i-1]) {
			return configErr("times", tl.Times, "must be non-decreasing within [0, 1]")
		}
	}
	if _, ok := particle.Interpolation(tl.Ease); !ok {
		return configErr("ease", tl.Ease, "unknown easing")
	}
	tl.keyframes = make([]particle.Keyframe, len(tl.Times))
	for i := range tl.Times {
		tl.keyframes[i] = particle.Keyframe{Time: tl.Times[i], Value: tl.Values[i]}
	}
	return nil
}

// progress 返回归一化进度
func (tl *Timeline) progress(elapsed time.Duration) float64 {
	elapsed -= tl.Delay
	if elapsed <= 0 {
		return 0
	}
	if tl.Repeat {
		elapsed %= tl.Duration
	} else if elapsed >= tl.Duration {
		return 1
	}
	return float64(elapsed) / float64(tl.Duration)
}

// Value 当前偏移值
func (tl *Timeline) Value(elapsed time.Duration) float64 {
	if tl.keyframes == nil {
		if tl.Validate() != nil {
			return 0
		}
	}
	return particle.EvaluateKeyframes(tl.keyframes, tl.progress(elapsed), tl.Ease)
}

// Done 循环时间轴永不结束
func (tl *Timeline) Done(elapsed time.Duration) bool {
	return !tl.Repeat && elapsed >= tl.Delay+tl.Duration
}

// Oscillator 正弦振荡：sin(2π·t/period + phase)·amplitude
type Oscillator struct {
	Amplitude float64
	Period    time.Duration
	Phase     float64
}

// Validate 周期必须为正
func (o *Oscillator) Validate() error {
	if o.Period <= 0 {
		return configErr("period", o.Period, "must be positive")
	}
	return nil
}

// Value 当前偏移值
func (o *Oscillator) Value(elapsed time.Duration) float64 {
	if o.Period <= 0 {
		return 0
	}
	t := float64(elapsed) / float64(o.Period)
	return math.Sin(2*math.Pi*t+o.Phase) * o.Amplitude
}

// Done 振荡器一直循环
func (o *Oscillator) Done(time.Duration) bool {
	return false
}
