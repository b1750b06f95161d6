package motion

import (
	"fmt"
	"time"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/utils"
)

// Options 磁吸浮动容器的参数
type Options struct {
	Key string

	// Strength 磁吸强度，半径边缘处位移为 Strength*30 像素
	Strength float64
	// FloatRange 浮动幅度（像素）
	FloatRange float64
	// FloatDuration 一个浮动周期
	FloatDuration time.Duration
	// DampingFactor 弹簧阻尼
	DampingFactor float64
	// ThresholdRadius 磁吸生效半径（像素）
	ThresholdRadius float64
	Falloff         Falloff

	Bounds utils.Rect
}

// DefaultOptions 与站点首页的容器一致
func DefaultOptions() Options {
	return Options{
		Strength:        0.3,
		FloatRange:      10,
		FloatDuration:   4 * time.Second,
		DampingFactor:   20,
		ThresholdRadius: 300,
	}
}

const (
	magneticPull      = 30.0
	magneticStiffness = 200.0
	hoverStiffness    = 400.0
	hoverDamping      = 25.0
)

var floatTimes = []float64{0, 0.25, 0.5, 0.75, 1}

// Magnetic 磁吸浮动容器
//
// 指针在半径内时，中心偏移经 [-R, R] -> [-30s, 30s] 映射为弹簧目标；
// 半径外目标归零。浮动循环叠加在弹簧位移之上，内容层的 rotateX/rotateY
// 由积分后的 x/y 派生。
func Magnetic(opts Options) (Spec, error) {
	if opts.Strength < 0 || !finite(opts.Strength) {
		return Spec{}, configErr("strength", opts.Strength, "must not be negative")
	}
	if opts.FloatRange < 0 || !finite(opts.FloatRange) {
		return Spec{}, configErr("floatRange", opts.FloatRange, "must not be negative")
	}
	if opts.FloatDuration <= 0 {
		return Spec{}, configErr("floatDuration", opts.FloatDuration, "must be positive")
	}
	if opts.DampingFactor < 0 || !finite(opts.DampingFactor) {
		return Spec{}, configErr("dampingFactor", opts.DampingFactor, "must not be negative")
	}
	prox := Proximity{Radius: opts.ThresholdRadius, Falloff: opts.Falloff}
	if err := prox.Validate(); err != nil {
		return Spec{}, err
	}

	r := opts.ThresholdRadius
	pull := opts.Strength * magneticPull
	spring := SpringParams{Stiffness: magneticStiffness, Damping: opts.DampingFactor}
	hover := SpringParams{Stiffness: hoverStiffness, Damping: hoverDamping}

	spec := Spec{
		Key: opts.Key,
		Bindings: []BindingSpec{
			{Source: SourcePointerX, Channel: ChannelX, Domain: []float64{-r, r}, Range: []float64{-pull, pull}},
			{Source: SourcePointerY, Channel: ChannelY, Domain: []float64{-r, r}, Range: []float64{-pull, pull}},
			{Source: SourceHover, Channel: ChannelScale, Domain: []float64{0, 1}, Range: []float64{0, 0.02}},
			{Source: SourceHover, Channel: ChannelRotateY, Domain: []float64{0, 1}, Range: []float64{0, 2}},
			{Source: SourceHover, Channel: ChannelRotateX, Domain: []float64{0, 1}, Range: []float64{0, 2}},
			{Source: SourceDerived, From: ChannelX, Channel: ChannelRotateY, Domain: []float64{-30, 30}, Range: []float64{-5, 5}},
			{Source: SourceDerived, From: ChannelY, Channel: ChannelRotateX, Domain: []float64{-30, 30}, Range: []float64{5, -5}},
		},
		Springs: map[Channel]SpringParams{
			ChannelX:       spring,
			ChannelY:       spring,
			ChannelScale:   hover,
			ChannelRotateX: hover,
			ChannelRotateY: hover,
		},
		Proximity: &prox,
		Bounds:    opts.Bounds,
	}
	if opts.FloatRange > 0 {
		fr := opts.FloatRange
		spec.Loops = []TrackSpec{
			{Channel: ChannelY, Times: floatTimes, Values: []float64{0, -fr, 0, fr, 0}, Ease: "easeInOut", Duration: opts.FloatDuration},
			{Channel: ChannelX, Times: floatTimes, Values: []float64{0, fr / 2, 0, -fr / 2, 0}, Ease: "easeInOut", Duration: opts.FloatDuration},
		}
	}
	return spec, nil
}

// MoteCount 磁吸容器周围的光点数量
const MoteCount = 8

// MoteSize 光点直径（像素）
const MoteSize = 8.0

// Mote 磁吸容器周围的一个浮动光点
// Anchor 是光点在容器内的相对位置（0..1），光点跟随容器一起移动
type Mote struct {
	Spec   Spec
	Anchor utils.Vec2
}

// Motes 为磁吸容器生成 n 个光点：上浮 20px 再落回，同时明暗和缩放同步变化；
// 第 i 个光点周期 3s+0.5s·i，延迟 0.3s·i 启动，彼此错开
func Motes(key string, n int) []Mote {
	motes := make([]Mote, n)
	for i := range motes {
		d := 3*time.Second + time.Duration(i)*500*time.Millisecond
		delay := time.Duration(i) * 300 * time.Millisecond
		loop := func(ch Channel, values ...float64) TrackSpec {
			return TrackSpec{Channel: ch, Values: values, Ease: "easeInOut", Duration: d, Delay: delay}
		}
		motes[i] = Mote{
			Spec: Spec{
				Key: fmt.Sprintf("%s-mote-%d", key, i+1),
				Loops: []TrackSpec{
					loop(ChannelY, 0, -20, 0),
					loop(ChannelOpacity, -0.8, -0.2, -0.8),
					loop(ChannelScale, -0.5, 0, -0.5),
				},
			},
			Anchor: utils.Vec2{X: 0.10 + 0.12*float64(i), Y: 0.20 + 0.30*float64(i%3)},
		}
	}
	return motes
}

// TiltCard 指针在卡片内时按相对位置倾斜，悬停时上浮
func TiltCard(key string, intensity float64, bounds utils.Rect) Spec {
	spring := SpringParams{Stiffness: 300, Damping: 30}
	return Spec{
		Key: key,
		Bindings: []BindingSpec{
			{Source: SourceHoverX, Channel: ChannelRotateY, Domain: []float64{-1, 1}, Range: []float64{-intensity, intensity}},
			{Source: SourceHoverY, Channel: ChannelRotateX, Domain: []float64{-1, 1}, Range: []float64{intensity, -intensity}},
			{Source: SourceHover, Channel: ChannelY, Domain: []float64{0, 1}, Range: []float64{0, -8}},
		},
		Springs: map[Channel]SpringParams{
			ChannelRotateX: spring,
			ChannelRotateY: spring,
			ChannelY:       spring,
		},
		Bounds: bounds,
	}
}

// ScrollProgress 页面滚动进度条，Progress 通道经弹簧平滑
func ScrollProgress(key string, start, end float64) Spec {
	return Spec{
		Key:       key,
		Scroll:    &ScrollSpec{Start: start, End: end},
		Bindings:  []BindingSpec{{Source: SourceScroll, Channel: ChannelProgress, Domain: []float64{0, 1}, Range: []float64{0, 1}}},
		Springs:   map[Channel]SpringParams{ChannelProgress: {Stiffness: 100, Damping: 30}},
		RestDelta: 0.001,
	}
}

// ScrollSyncedKind 滚动联动的变换类型
type ScrollSyncedKind string

const (
	ScrollRotate ScrollSyncedKind = "rotate"
	ScrollScale  ScrollSyncedKind = "scale"
	ScrollSlide  ScrollSyncedKind = "slide"
	ScrollMorph  ScrollSyncedKind = "morph"
)

// ScrollSynced 变换直接由滚动进度决定（不经过弹簧）
func ScrollSynced(key string, kind ScrollSyncedKind, intensity, start, end float64) (Spec, error) {
	spec := Spec{Key: key, Scroll: &ScrollSpec{Start: start, End: end}}
	unit := []float64{0, 1}
	half := []float64{0, 0.5, 1}
	switch kind {
	case ScrollRotate:
		spec.Bindings = []BindingSpec{{Source: SourceScroll, Channel: ChannelRotate, Domain: unit, Range: []float64{0, 360 * intensity}}}
	case ScrollScale:
		spec.Bindings = []BindingSpec{{Source: SourceScroll, Channel: ChannelScale, Domain: half, Range: []float64{-0.2, 0.2, -0.2}}}
	case ScrollSlide:
		spec.Bindings = []BindingSpec{
			{Source: SourceScroll, Channel: ChannelX, Domain: unit, Range: []float64{0, 100 * intensity}},
			{Source: SourceScroll, Channel: ChannelY, Domain: unit, Range: []float64{0, -50 * intensity}},
		}
	case ScrollMorph:
		spec.Bindings = []BindingSpec{{Source: SourceScroll, Channel: ChannelScale, Domain: half, Range: []float64{0, 0.1, 0}}}
	default:
		return Spec{}, configErr("kind", kind, "must be rotate, scale, slide or morph")
	}
	return spec, nil
}

// Parallax 视差层，滚动过整个区间时下移 speed*200 像素
func Parallax(key string, speed, start, end float64) Spec {
	return Spec{
		Key:      key,
		Scroll:   &ScrollSpec{Start: start, End: end},
		Bindings: []BindingSpec{{Source: SourceScroll, Channel: ChannelY, Domain: []float64{0, 1}, Range: []float64{0, speed * 200}}},
	}
}

// Intensity 脉冲与抖动的强度档位
type Intensity string

const (
	Light  Intensity = "light"
	Medium Intensity = "medium"
	Strong Intensity = "strong"
)

// PulseTransition / ShakeTransition 预设过渡的名称
const (
	PulseTransition = "pulse"
	ShakeTransition = "shake"
	EnterTransition = enterTransition
)

func pulseScale(i Intensity) (float64, error) {
	switch i {
	case Light:
		return 1.02, nil
	case Medium, "":
		return 1.05, nil
	case Strong:
		return 1.1, nil
	default:
		return 0, configErr("intensity", i, "must be light, medium or strong")
	}
}

func shakeAmount(i Intensity) (float64, error) {
	switch i {
	case Light:
		return 2, nil
	case Medium, "":
		return 4, nil
	case Strong:
		return 8, nil
	default:
		return 0, configErr("intensity", i, "must be light, medium or strong")
	}
}

// MicroPulse 点击反馈，Trigger(PulseTransition) 播放一次
// bounce 为 true 时缩放先过冲再回弹
func MicroPulse(key string, intensity Intensity, duration time.Duration, bounce bool) (Spec, error) {
	s, err := pulseScale(intensity)
	if err != nil {
		return Spec{}, err
	}
	track := TrackSpec{Channel: ChannelScale, Values: []float64{0, s - 1, 0}, Ease: "easeInOut", Duration: duration}
	if bounce {
		track.Times = []float64{0, 0.4, 0.7, 1}
		track.Values = []float64{0, s - 1, -0.05, 0}
	}
	return Spec{Key: key, Transitions: map[string][]TrackSpec{PulseTransition: {track}}}, nil
}

// ErrorShake 表单校验失败时的水平抖动，Trigger(ShakeTransition) 播放一次
func ErrorShake(key string, intensity Intensity, duration time.Duration) (Spec, error) {
	a, err := shakeAmount(intensity)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Key: key,
		Transitions: map[string][]TrackSpec{
			ShakeTransition: {{
				Channel:  ChannelX,
				Times:    []float64{0, 0.2, 0.4, 0.6, 0.8, 1},
				Values:   []float64{0, -a, a, -a, a, 0},
				Ease:     "easeInOut",
				Duration: duration,
			}},
		},
	}, nil
}

// FadeScaleIn 第一次可见时淡入并放大到原尺寸
//
// enter 过渡结束后偏移回到 0，所以起始值用负偏移表示：
// opacity 从 0（偏移 -1）到 1，scale 从 initialScale 到 1。
func FadeScaleIn(key string, initialScale float64, duration, delay time.Duration) Spec {
	return Spec{
		Key:    key,
		Hidden: true,
		Transitions: map[string][]TrackSpec{
			EnterTransition: {
				{Channel: ChannelOpacity, Values: []float64{-1, 0}, Ease: "easeOut", Duration: duration, Delay: delay},
				{Channel: ChannelScale, Values: []float64{initialScale - 1, 0}, Ease: "easeOut", Duration: duration, Delay: delay},
			},
		},
	}
}

// ToggleThumb 开关滑块，SetInput(1) 打开
func ToggleThumb(key string, travel float64) Spec {
	return Spec{
		Key:      key,
		Bindings: []BindingSpec{{Source: SourceInput, Channel: ChannelX, Domain: []float64{0, 1}, Range: []float64{0, travel}}},
		Springs:  map[Channel]SpringParams{ChannelX: {Stiffness: 500, Damping: 25}},
	}
}

func mustValue(s string) particle.Value {
	v, err := particle.ParseValue(s)
	if err != nil {
		panic(fmt.Sprintf("motion: bad built-in particle value %q: %v", s, err))
	}
	return v
}

// GooglePalette 站点光标拖尾使用的四种品牌色
var GooglePalette = []string{"#4285F4", "#EA4335", "#FBBC05", "#34A853"}

// CursorBlobs 光标拖尾：指针移动时最多每 80ms 生成一个，满 16 个时移除最早的
func CursorBlobs(key string) EmitterConfig {
	return EmitterConfig{
		Key:         key,
		Mode:        EmitPointer,
		Cap:         16,
		MinInterval: 80 * time.Millisecond,
		Policy:      PolicyEvictOldest,
		Particle: ParticleSpec{
			Size:    mustValue("[20 50]"),
			Opacity: mustValue("[0.3 0.7]"),
			Speed:   mustValue("[0 20]"),
			Life:    mustValue("[2000 3500]"),
			Scale:   mustValue("[1] [0.3]"),
			Spread:  40,
			Palette: GooglePalette,
		},
		Drag: 0.887,
	}
}

// ParticleSize 环境粒子的尺寸档位
type ParticleSize string

// ParticleSpeed 环境粒子的速度档位
type ParticleSpeed string

const (
	SizeSmall  ParticleSize = "small"
	SizeMedium ParticleSize = "medium"
	SizeLarge  ParticleSize = "large"

	SpeedSlow   ParticleSpeed = "slow"
	SpeedMedium ParticleSpeed = "medium"
	SpeedFast   ParticleSpeed = "fast"
)

// AmbientParticles 背景粒子：在区域内均匀生成，满额时跳过，越界回绕，被指针推开
func AmbientParticles(key string, count int, size ParticleSize, speed ParticleSpeed, bounds utils.Rect) (EmitterConfig, error) {
	var sizeRange string
	switch size {
	case SizeSmall, "":
		sizeRange = "[1 3]"
	case SizeMedium:
		sizeRange = "[2 5]"
	case SizeLarge:
		sizeRange = "[3 8]"
	default:
		return EmitterConfig{}, configErr("size", size, "must be small, medium or large")
	}
	var mult float64
	switch speed {
	case SpeedSlow, "":
		mult = 0.3
	case SpeedMedium:
		mult = 0.6
	case SpeedFast:
		mult = 1
	default:
		return EmitterConfig{}, configErr("speed", speed, "must be slow, medium or fast")
	}
	// 每帧 (rand-0.5)*mult 像素，按 60fps 换算为每秒
	maxSpeed := mult * 60 / 2

	return EmitterConfig{
		Key:         key,
		Mode:        EmitAutonomous,
		Cap:         count,
		MinInterval: 50 * time.Millisecond,
		Policy:      PolicySkip,
		Particle: ParticleSpec{
			Size:    mustValue(sizeRange),
			Opacity: mustValue("[0.2 0.8]"),
			Speed:   particle.Range(0, maxSpeed),
			Life:    mustValue("[8000 12000]"),
			Uniform: true,
			Palette: []string{"#4285F4", "#34A853", "#FBBC05"},
		},
		Bounds:        bounds,
		Wrap:          true,
		Drag:          0.547,
		RepelRadius:   100,
		RepelStrength: 360,
	}, nil
}

// Ripple 点击涟漪：Burst 生成，600ms 内放大到 4 倍并淡出
func Ripple(key string, color string) EmitterConfig {
	return EmitterConfig{
		Key:    key,
		Mode:   EmitBurst,
		Cap:    8,
		Policy: PolicyEvictOldest,
		Particle: ParticleSpec{
			Size:    particle.Fixed(40),
			Opacity: particle.Fixed(0.6),
			Life:    particle.Fixed(600),
			Scale:   mustValue("[0] [4]"),
			Alpha:   mustValue("[1] [0]"),
			Ease:    "EaseOut",
			Palette: []string{color},
		},
	}
}
