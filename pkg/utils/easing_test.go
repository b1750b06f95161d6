package utils

import (
	"math"
	"testing"
)

// TestEasingEndpoints 所有缓动函数在 0 和 1 处必须返回 0 和 1
func TestEasingEndpoints(t *testing.T) {
	for name, fn := range easingByName {
		t.Run(name, func(t *testing.T) {
			if got := fn(0); math.Abs(got) > 1e-9 {
				t.Errorf("%q(0) = %v, 期望 0", name, got)
			}
			if got := fn(1); math.Abs(got-1) > 1e-9 {
				t.Errorf("%q(1) = %v, 期望 1", name, got)
			}
		})
	}
}

// TestEaseOutCubic 测试三次方缓出函数
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"中点", 0.5, 0.875}, // 1 - (1-0.5)^3
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestEaseInOutSine 中点为 0.5，且关于中点对称
func TestEaseInOutSine(t *testing.T) {
	if got := EaseInOutSine(0.5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("EaseInOutSine(0.5) = %v, 期望 0.5", got)
	}
	for p := 0.05; p < 0.5; p += 0.05 {
		a := EaseInOutSine(p)
		b := 1 - EaseInOutSine(1-p)
		if math.Abs(a-b) > 1e-9 {
			t.Errorf("EaseInOutSine 不对称: f(%v)=%v, 1-f(%v)=%v", p, a, 1-p, b)
		}
		if a >= p {
			t.Errorf("EaseInOutSine(%v) = %v 前半段应慢于线性", p, a)
		}
	}
}

func TestEasingByName(t *testing.T) {
	if _, ok := EasingByName("easeInOut"); !ok {
		t.Fatal("easeInOut 应该存在")
	}
	if _, ok := EasingByName("bounce"); ok {
		t.Error("未知名称应返回 false")
	}
	fn, _ := EasingByName("")
	if fn(0.3) != 0.3 {
		t.Error("空名称应为线性缓动")
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	tests := []struct {
		name    string
		a, b, t float64
		want    float64
	}{
		{"起点", 0, 100, 0, 0},
		{"终点", 0, 100, 1, 100},
		{"中点", 0, 100, 0.5, 50},
		{"负数区间", -10, 10, 0.25, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.a, tt.b, tt.t); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Lerp(%v, %v, %v) = %v, 期望 %v", tt.a, tt.b, tt.t, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.4, 0, 1) != 0.4 {
		t.Error("Clamp 结果错误")
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 50}
	if c := r.Center(); c.X != 60 || c.Y != 35 {
		t.Errorf("Center() = %+v, 期望 (60, 35)", c)
	}
	if !r.Contains(Vec2{X: 10, Y: 10}) {
		t.Error("左上角应在矩形内")
	}
	if r.Contains(Vec2{X: 110, Y: 20}) {
		t.Error("右边界不应在矩形内")
	}
	if (Rect{Width: 0, Height: 10}).Empty() != true {
		t.Error("零宽矩形应视为空")
	}
}

func TestRandomInRange(t *testing.T) {
	r := NewSeededRandom(42)
	for i := 0; i < 100; i++ {
		v := RandomInRange(r, 2, 3.5)
		if v < 2 || v > 3.5 {
			t.Fatalf("RandomInRange 越界: %v", v)
		}
		s := RandomSpread(r, 40)
		if s < -20 || s >= 20 {
			t.Fatalf("RandomSpread 越界: %v", s)
		}
	}
	if RandomInRange(r, 5, 5) != 5 {
		t.Error("min == max 时应返回 min")
	}

	// 相同种子产生相同序列
	a, b := NewSeededRandom(7), NewSeededRandom(7)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("相同种子应产生相同序列")
		}
	}
}
