// Package particle provides the value grammar shared by emitter presets and
// keyframe timelines: fixed values, random ranges and keyframe curves.
package particle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/decker502/studyjam/pkg/utils"
)

// Keyframe represents a single keyframe in an animation curve.
// Time is normalized to 0-1.
type Keyframe struct {
	Time  float64 // Normalized time (0-1)
	Value float64 // Value at this keyframe
}

// Value is a parsed numeric preset value.
//
// Supported formats:
//   - Fixed value: "1500" → Min=1500, Max=1500
//   - Range: "[0.7 0.9]" → Min=0.7, Max=0.9
//   - Double range: "[0.4 0.6] [0.8 1.2]" → start/end ranges, keyframes built at Sample time
//   - Keyframes: "0,2 0.5,8 1,2" → keyframes=[{0,2} {0.5,8} {1,2}]
//   - Interpolation: "EaseOut 0,1 1,0" → keyframes with Interpolation="EaseOut"
type Value struct {
	Min, Max      float64
	Keyframes     []Keyframe
	Interpolation string

	// 双范围格式的结束范围
	EndMin, EndMax float64
	HasEnd         bool
}

// Fixed 构造固定值
func Fixed(v float64) Value {
	return Value{Min: v, Max: v}
}

// Range 构造随机范围
func Range(min, max float64) Value {
	return Value{Min: min, Max: max}
}

// IsZero 未设置的值（用于 YAML 默认值填充）
func (v Value) IsZero() bool {
	return v.Min == 0 && v.Max == 0 && len(v.Keyframes) == 0 && !v.HasEnd
}

// IsRange 是否为随机范围
func (v Value) IsRange() bool {
	return v.Min != v.Max
}

// Sample 从值中取一个具体数值
// 范围格式在 [Min, Max] 内随机；关键帧格式取第一帧的值
func (v Value) Sample(r utils.Random) float64 {
	if len(v.Keyframes) > 0 {
		return v.Keyframes[0].Value
	}
	return utils.RandomInRange(r, v.Min, v.Max)
}

// SampleCurve 为单个实例生成关键帧曲线
// 双范围格式随机选取起止值；普通范围返回恒定曲线
func (v Value) SampleCurve(r utils.Random) []Keyframe {
	if len(v.Keyframes) > 0 {
		return v.Keyframes
	}
	start := utils.RandomInRange(r, v.Min, v.Max)
	end := start
	if v.HasEnd {
		end = utils.RandomInRange(r, v.EndMin, v.EndMax)
	}
	return []Keyframe{{Time: 0, Value: start}, {Time: 1, Value: end}}
}

// String 还原为预设文件中的书写格式
func (v Value) String() string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	switch {
	case len(v.Keyframes) > 0:
		parts := make([]string, 0, len(v.Keyframes)+1)
		if v.Interpolation != "" {
			parts = append(parts, v.Interpolation)
		}
		for _, kf := range v.Keyframes {
			parts = append(parts, f(kf.Time)+","+f(kf.Value))
		}
		return strings.Join(parts, " ")
	case v.HasEnd:
		return fmt.Sprintf("[%s %s] [%s %s]", f(v.Min), f(v.Max), f(v.EndMin), f(v.EndMax))
	case v.IsRange():
		return fmt.Sprintf("[%s %s]", f(v.Min), f(v.Max))
	default:
		return f(v.Min)
	}
}

// UnmarshalYAML 支持数字标量和字符串两种写法
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a scalar, got %v", node.Line, node.Tag)
	}
	parsed, err := ParseValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalYAML 输出书写格式
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.IsRange() && len(v.Keyframes) == 0 && !v.HasEnd {
		return v.Min, nil
	}
	return v.String(), nil
}

// interpolationKeywords 关键帧插值关键字
var interpolationKeywords = map[string]utils.EasingFunc{
	"Linear":        utils.EaseLinear,
	"EaseIn":        utils.EaseInQuad,
	"EaseOut":       utils.EaseOutQuad,
	"EaseInOut":     utils.EaseInOutSine,
	"FastInOutWeak": smoothstep,
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Interpolation 按名称查找插值函数
// 既接受关键帧关键字（"EaseOut"），也接受预设里的缓动名（"easeOutCubic"）
func Interpolation(name string) (utils.EasingFunc, bool) {
	if fn, ok := interpolationKeywords[name]; ok {
		return fn, true
	}
	return utils.EasingByName(name)
}

// ParseValue parses a value string from a preset file.
// Malformed input is reported as an error instead of silently becoming zero.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, nil
	}

	// 双范围格式 "[min1 max1] [min2 max2]"
	if strings.Count(s, "[") == 2 && strings.Count(s, "]") == 2 {
		closeIdx := strings.Index(s, "]")
		first, err := parseRange(s[:closeIdx+1])
		if err != nil {
			return Value{}, err
		}
		second, err := parseRange(strings.TrimSpace(s[closeIdx+1:]))
		if err != nil {
			return Value{}, err
		}
		return Value{
			Min: first.Min, Max: first.Max,
			EndMin: second.Min, EndMax: second.Max,
			HasEnd: true,
		}, nil
	}

	// 范围格式 "[min max]" 或 "[value]"
	if strings.HasPrefix(s, "[") {
		return parseRange(s)
	}

	// 插值关键字
	var interpolation string
	fields := strings.Fields(s)
	if len(fields) > 0 {
		if _, ok := interpolationKeywords[fields[0]]; ok {
			interpolation = fields[0]
			fields = fields[1:]
		}
	}

	// 关键帧格式 "time,value ..."
	if interpolation != "" || strings.Contains(s, ",") {
		keyframes := make([]Keyframe, 0, len(fields))
		for _, part := range fields {
			pair := strings.Split(part, ",")
			if len(pair) != 2 {
				return Value{}, fmt.Errorf("invalid keyframe %q in %q", part, s)
			}
			t, err1 := strconv.ParseFloat(pair[0], 64)
			val, err2 := strconv.ParseFloat(pair[1], 64)
			if err1 != nil || err2 != nil {
				return Value{}, fmt.Errorf("invalid keyframe %q in %q", part, s)
			}
			// 百分比时间（>1）归一化
			if t > 1 {
				t /= 100
			}
			if len(keyframes) > 0 && t < keyframes[len(keyframes)-1].Time {
				return Value{}, fmt.Errorf("keyframe times must not decrease in %q", s)
			}
			keyframes = append(keyframes, Keyframe{Time: t, Value: val})
		}
		if len(keyframes) == 0 {
			return Value{}, fmt.Errorf("no keyframes in %q", s)
		}
		return Value{Keyframes: keyframes, Interpolation: interpolation}, nil
	}

	// 固定值
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return Fixed(value), nil
}

func parseRange(s string) (Value, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Value{}, fmt.Errorf("invalid range %q", s)
	}
	parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	switch len(parts) {
	case 1:
		val, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return Fixed(val), nil
	case 2:
		min, err1 := strconv.ParseFloat(parts[0], 64)
		max, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return Value{}, fmt.Errorf("invalid range %q", s)
		}
		if min > max {
			return Value{}, fmt.Errorf("inverted range %q", s)
		}
		return Range(min, max), nil
	default:
		return Value{}, fmt.Errorf("invalid range %q", s)
	}
}

// EvaluateKeyframes calculates the interpolated value at time t (0-1)
// using the provided keyframes and interpolation mode.
//
// Parameters:
//   - keyframes: Array of keyframes (must be sorted by Time)
//   - t: Normalized time (0-1)
//   - interpolation: Interpolation mode ("Linear", "EaseIn", "easeInOut", etc.)
//
// Returns the interpolated value at time t.
func EvaluateKeyframes(keyframes []Keyframe, t float64, interpolation string) float64 {
	if len(keyframes) == 0 {
		return 0
	}
	if len(keyframes) == 1 {
		return keyframes[0].Value
	}

	// Clamp t to [0, 1]
	t = math.Max(0, math.Min(1, t))

	// t 小于第一个关键帧的时间时返回第一个关键帧的值
	if t < keyframes[0].Time {
		return keyframes[0].Value
	}

	ease, ok := Interpolation(interpolation)
	if !ok {
		// Unknown interpolation, use linear
		ease = utils.EaseLinear
	}

	// Find the keyframe interval containing t
	for i := 0; i < len(keyframes)-1; i++ {
		k0 := keyframes[i]
		k1 := keyframes[i+1]

		if t >= k0.Time && t <= k1.Time {
			duration := k1.Time - k0.Time
			if duration <= 0 {
				return k1.Value
			}
			ratio := ease((t - k0.Time) / duration)
			return k0.Value + ratio*(k1.Value-k0.Value)
		}
	}

	// If t is beyond the last keyframe, return the last value
	return keyframes[len(keyframes)-1].Value
}
