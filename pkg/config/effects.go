package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/studyjam/internal/particle"
	"github.com/decker502/studyjam/pkg/embedded"
	"github.com/decker502/studyjam/pkg/motion"
	"github.com/decker502/studyjam/pkg/physics"
	"github.com/decker502/studyjam/pkg/utils"
)

// DefaultEffectsPath 内置预设文件路径
const DefaultEffectsPath = "data/effects.yaml"

// EffectsConfig 动效预设文件
type EffectsConfig struct {
	Engine   EngineSettings           `yaml:"engine"`
	Regions  map[string]RegionPreset  `yaml:"regions"`
	Emitters map[string]EmitterPreset `yaml:"emitters"`
}

// EngineSettings 引擎参数
type EngineSettings struct {
	Integrator    string        `yaml:"integrator"`    // euler | harmonica
	FPS           int           `yaml:"fps"`           // harmonica 的固定步频
	MaxFrameDelta time.Duration `yaml:"maxFrameDelta"` // 单帧步长上限
}

// RegionPreset 区域预设，Kind 决定使用哪些字段
type RegionPreset struct {
	Kind string `yaml:"kind"` // magnetic | tilt | scrollProgress | scrollSynced | parallax | pulse | shake | fadeIn | toggle

	// magnetic
	Strength        float64       `yaml:"strength"`
	FloatRange      float64       `yaml:"floatRange"`
	FloatDuration   time.Duration `yaml:"floatDuration"`
	DampingFactor   float64       `yaml:"dampingFactor"`
	ThresholdRadius float64       `yaml:"thresholdRadius"`
	Falloff         string        `yaml:"falloff"`

	// tilt / scrollSynced / pulse / shake
	Intensity any `yaml:"intensity"`

	// scroll 系列
	Start   float64 `yaml:"start"`
	End     float64 `yaml:"end"`
	Variant string  `yaml:"variant"` // scrollSynced: rotate | scale | slide | morph
	Speed   float64 `yaml:"speed"`   // parallax

	// pulse / shake / fadeIn
	Duration     time.Duration `yaml:"duration"`
	Delay        time.Duration `yaml:"delay"`
	Bounce       bool          `yaml:"bounce"`
	InitialScale float64       `yaml:"initialScale"`

	// toggle
	Travel float64 `yaml:"travel"`
}

// EmitterPreset 发射器预设：Kind 选择基础预设，其余非零字段覆盖
type EmitterPreset struct {
	Kind string `yaml:"kind"` // cursorBlobs | ambient | ripple

	Cap         int           `yaml:"cap"`
	MinInterval time.Duration `yaml:"minInterval"`
	Policy      string        `yaml:"policy"` // skip | evictOldest
	Drag        float64       `yaml:"drag"`

	// ambient
	Count       int     `yaml:"count"`
	Size        string  `yaml:"size"`  // small | medium | large
	Speed       string  `yaml:"speed"` // slow | medium | fast
	RepelRadius float64 `yaml:"repelRadius"`

	// ripple
	Color string `yaml:"color"`

	Particle ParticleOverrides `yaml:"particle"`
}

// ParticleOverrides 粒子参数覆盖，取值使用 particle.Value 语法
type ParticleOverrides struct {
	Size    particle.Value `yaml:"size"`
	Opacity particle.Value `yaml:"opacity"`
	Speed   particle.Value `yaml:"speed"`
	Life    particle.Value `yaml:"life"`
	Scale   particle.Value `yaml:"scale"`
	Alpha   particle.Value `yaml:"alpha"`
	Spread  float64        `yaml:"spread"`
	Palette []string       `yaml:"palette"`
	FadeTo  string         `yaml:"fadeTo"`
	Ease    string         `yaml:"ease"`
}

// validationBounds 校验时代替宿主布局的占位区域
var validationBounds = utils.Rect{Width: 1, Height: 1}

// LoadEffects 从 YAML 文件加载动效预设
func LoadEffects(filePath string) (*EffectsConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read effects file: %w", err)
	}
	return ParseEffects(data)
}

// DefaultEffects 读取内置预设（需要先调用 embedded.Init）
func DefaultEffects() (*EffectsConfig, error) {
	data, err := embedded.ReadFile(DefaultEffectsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read built-in effects: %w", err)
	}
	return ParseEffects(data)
}

// ParseEffects 解析并校验预设内容
func ParseEffects(data []byte) (*EffectsConfig, error) {
	var config EffectsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse effects YAML: %w", err)
	}
	if err := validateEffects(&config); err != nil {
		return nil, fmt.Errorf("invalid effects config: %w", err)
	}
	return &config, nil
}

// validateEffects 把每个预设转换一遍，错误沿用 motion.ConfigError
func validateEffects(config *EffectsConfig) error {
	switch config.Engine.Integrator {
	case "", "euler", "harmonica":
	default:
		return fmt.Errorf("engine.integrator must be euler or harmonica, got %q", config.Engine.Integrator)
	}
	if config.Engine.FPS < 0 {
		return fmt.Errorf("engine.fps must be >= 0, got %d", config.Engine.FPS)
	}
	if config.Engine.MaxFrameDelta < 0 {
		return fmt.Errorf("engine.maxFrameDelta must be >= 0, got %v", config.Engine.MaxFrameDelta)
	}

	for _, name := range sortedKeys(config.Regions) {
		spec, err := config.Regions[name].Spec(name)
		if err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
	}
	for _, name := range sortedKeys(config.Emitters) {
		cfg, err := config.Emitters[name].Config(name, validationBounds)
		if err != nil {
			return fmt.Errorf("emitter %q: %w", name, err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("emitter %q: %w", name, err)
		}
	}
	return nil
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Options 引擎选项
func (s EngineSettings) Options() []motion.EngineOption {
	var opts []motion.EngineOption
	if s.Integrator == "harmonica" {
		opts = append(opts, motion.WithIntegrator(physics.NewHarmonicaIntegrator(s.FPS)))
	}
	if s.MaxFrameDelta > 0 {
		opts = append(opts, motion.WithMaxFrameDelta(s.MaxFrameDelta))
	}
	return opts
}

func (p RegionPreset) intensityLevel() motion.Intensity {
	if s, ok := p.Intensity.(string); ok {
		return motion.Intensity(s)
	}
	return ""
}

func (p RegionPreset) intensityValue(def float64) (float64, error) {
	switch v := p.Intensity.(type) {
	case nil:
		return def, nil
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, &motion.ConfigError{Field: "intensity", Value: v, Reason: "must be a number"}
	}
}

// Spec 把预设转换为 motion.Spec
func (p RegionPreset) Spec(name string) (motion.Spec, error) {
	switch p.Kind {
	case "magnetic":
		falloff, err := physics.ParseFalloff(p.Falloff)
		if err != nil {
			return motion.Spec{}, err
		}
		opts := motion.DefaultOptions()
		opts.Key = name
		opts.Falloff = falloff
		if p.Strength != 0 {
			opts.Strength = p.Strength
		}
		if p.FloatRange != 0 {
			opts.FloatRange = p.FloatRange
		}
		if p.FloatDuration != 0 {
			opts.FloatDuration = p.FloatDuration
		}
		if p.DampingFactor != 0 {
			opts.DampingFactor = p.DampingFactor
		}
		if p.ThresholdRadius != 0 {
			opts.ThresholdRadius = p.ThresholdRadius
		}
		return motion.Magnetic(opts)
	case "tilt":
		intensity, err := p.intensityValue(15)
		if err != nil {
			return motion.Spec{}, err
		}
		return motion.TiltCard(name, intensity, utils.Rect{}), nil
	case "scrollProgress":
		return motion.ScrollProgress(name, p.Start, p.End), nil
	case "scrollSynced":
		intensity, err := p.intensityValue(1)
		if err != nil {
			return motion.Spec{}, err
		}
		return motion.ScrollSynced(name, motion.ScrollSyncedKind(p.Variant), intensity, p.Start, p.End)
	case "parallax":
		return motion.Parallax(name, p.Speed, p.Start, p.End), nil
	case "pulse":
		return motion.MicroPulse(name, p.intensityLevel(), p.Duration, p.Bounce)
	case "shake":
		return motion.ErrorShake(name, p.intensityLevel(), p.Duration)
	case "fadeIn":
		scale := p.InitialScale
		if scale == 0 {
			scale = 0.9
		}
		return motion.FadeScaleIn(name, scale, p.Duration, p.Delay), nil
	case "toggle":
		return motion.ToggleThumb(name, p.Travel), nil
	default:
		return motion.Spec{}, &motion.ConfigError{Field: "kind", Value: p.Kind, Reason: "unknown region kind"}
	}
}

// Config 把预设转换为 motion.EmitterConfig
// bounds 为宿主当前的布局区域，环境粒子在其中生成和回绕
func (p EmitterPreset) Config(name string, bounds utils.Rect) (motion.EmitterConfig, error) {
	var cfg motion.EmitterConfig
	switch p.Kind {
	case "cursorBlobs":
		cfg = motion.CursorBlobs(name)
	case "ambient":
		count := p.Count
		if count == 0 {
			count = 30
		}
		var err error
		cfg, err = motion.AmbientParticles(name, count, motion.ParticleSize(p.Size), motion.ParticleSpeed(p.Speed), bounds)
		if err != nil {
			return cfg, err
		}
	case "ripple":
		color := p.Color
		if color == "" {
			color = "#ffffff"
		}
		cfg = motion.Ripple(name, color)
	default:
		return cfg, &motion.ConfigError{Field: "kind", Value: p.Kind, Reason: "unknown emitter kind"}
	}

	if p.Cap != 0 {
		cfg.Cap = p.Cap
	}
	if p.MinInterval != 0 {
		cfg.MinInterval = p.MinInterval
	}
	switch p.Policy {
	case "":
	case "skip":
		cfg.Policy = motion.PolicySkip
	case "evictOldest":
		cfg.Policy = motion.PolicyEvictOldest
	default:
		return cfg, &motion.ConfigError{Field: "policy", Value: p.Policy, Reason: "must be skip or evictOldest"}
	}
	if p.Drag != 0 {
		cfg.Drag = p.Drag
	}
	if p.RepelRadius != 0 {
		cfg.RepelRadius = p.RepelRadius
	}
	p.Particle.apply(&cfg.Particle)
	return cfg, nil
}

func (o ParticleOverrides) apply(spec *motion.ParticleSpec) {
	if !o.Size.IsZero() {
		spec.Size = o.Size
	}
	if !o.Opacity.IsZero() {
		spec.Opacity = o.Opacity
	}
	if !o.Speed.IsZero() {
		spec.Speed = o.Speed
	}
	if !o.Life.IsZero() {
		spec.Life = o.Life
	}
	if !o.Scale.IsZero() {
		spec.Scale = o.Scale
	}
	if !o.Alpha.IsZero() {
		spec.Alpha = o.Alpha
	}
	if o.Spread != 0 {
		spec.Spread = o.Spread
	}
	if len(o.Palette) > 0 {
		spec.Palette = append([]string(nil), o.Palette...)
	}
	if o.FadeTo != "" {
		spec.FadeTo = o.FadeTo
	}
	if o.Ease != "" {
		spec.Ease = o.Ease
	}
}
