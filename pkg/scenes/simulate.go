package scenes

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFrameStep 模拟使用的固定帧间隔
const DefaultFrameStep = 16 * time.Millisecond

// Point 脚本中的视口坐标
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Step 脚本中的一个输入事件，到达 At 后的第一帧执行
type Step struct {
	At       time.Duration `yaml:"at"`
	Move     *Point        `yaml:"move,omitempty"`
	Scroll   float64       `yaml:"scroll,omitempty"` // 相对滚动
	Click    *Point        `yaml:"click,omitempty"`
	AltClick bool          `yaml:"altClick,omitempty"`
}

// Script 无界面模拟脚本
type Script struct {
	Frames      int           `yaml:"frames"`
	FrameStep   time.Duration `yaml:"frameStep"`
	SampleEvery int           `yaml:"sampleEvery"`
	Steps       []Step        `yaml:"steps"`
}

// RegionSample 一个区域的采样
type RegionSample struct {
	Name     string  `yaml:"name"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotate   float64 `yaml:"rotate,omitempty"`
	RotateX  float64 `yaml:"rotateX,omitempty"`
	RotateY  float64 `yaml:"rotateY,omitempty"`
	Scale    float64 `yaml:"scale"`
	Opacity  float64 `yaml:"opacity"`
	Progress float64 `yaml:"progress,omitempty"`
}

// Sample 一帧的采样
type Sample struct {
	Frame     int            `yaml:"frame"`
	At        time.Duration  `yaml:"at"`
	ScrollY   float64        `yaml:"scrollY"`
	Active    int            `yaml:"active"`
	Particles int            `yaml:"particles"`
	Headline  string         `yaml:"headline"`
	Regions   []RegionSample `yaml:"regions"`
}

// DefaultScript 指针扫过主卡片、滚动整页、点击按钮并触发一次抖动
func DefaultScript(width, height float64) Script {
	cx := width / 2
	return Script{
		Frames:      240,
		FrameStep:   DefaultFrameStep,
		SampleEvery: 30,
		Steps: []Step{
			{At: 0, Move: &Point{X: cx - 200, Y: 230}},
			{At: 200 * time.Millisecond, Move: &Point{X: cx - 100, Y: 230}},
			{At: 400 * time.Millisecond, Move: &Point{X: cx + 60, Y: 260}},
			{At: 800 * time.Millisecond, Click: &Point{X: cx, Y: 230}},
			{At: 1200 * time.Millisecond, Scroll: height / 2},
			{At: 1600 * time.Millisecond, Scroll: height},
			{At: 2000 * time.Millisecond, AltClick: true},
			{At: 2400 * time.Millisecond, Move: &Point{X: cx, Y: height - 40}},
			{At: 3000 * time.Millisecond, Scroll: -height},
		},
	}
}

// LoadScript 从 YAML 文件读取脚本
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	return script, nil
}

// Simulate 按脚本驱动展示页，每 SampleEvery 帧和最后一帧各采样一次
func Simulate(s *Showcase, script Script) []Sample {
	step := script.FrameStep
	if step <= 0 {
		step = DefaultFrameStep
	}
	every := script.SampleEvery
	if every <= 0 {
		every = 1
	}

	var samples []Sample
	next := 0
	for frame := 0; frame < script.Frames; frame++ {
		now := time.Duration(frame) * step
		for next < len(script.Steps) && script.Steps[next].At <= now {
			s.apply(script.Steps[next])
			next++
		}
		s.Frame(now)
		if frame%every == 0 || frame == script.Frames-1 {
			samples = append(samples, s.sample(frame))
		}
	}
	return samples
}

func (s *Showcase) apply(st Step) {
	if st.Move != nil {
		s.MovePointer(st.Move.X, st.Move.Y)
	}
	if st.Scroll != 0 {
		s.ScrollBy(st.Scroll)
	}
	if st.Click != nil {
		s.Click(st.Click.X, st.Click.Y)
	}
	if st.AltClick {
		s.AltClick()
	}
}

func (s *Showcase) sample(frame int) Sample {
	snap := s.Snapshot()
	out := Sample{
		Frame:     frame,
		At:        snap.Now,
		ScrollY:   snap.ScrollY,
		Active:    snap.Active,
		Particles: len(snap.Dots),
		Headline:  snap.Headline,
	}
	for _, b := range snap.Boxes {
		out.Regions = append(out.Regions, RegionSample{
			Name:     b.Name,
			X:        round(b.Out.X),
			Y:        round(b.Out.Y),
			Rotate:   round(b.Out.Rotate),
			RotateX:  round(b.Out.RotateX),
			RotateY:  round(b.Out.RotateY),
			Scale:    round(b.Out.Scale),
			Opacity:  round(b.Out.Opacity),
			Progress: round(b.Out.Progress),
		})
	}
	return out
}

// round 保留三位小数，避免输出中出现浮点噪声
func round(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // -0
	}
	return r
}
