package utils

import "math"

// Vec2 二维向量（屏幕坐标，单位像素）
type Vec2 struct {
	X, Y float64
}

// Add 向量加法
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 向量减法
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale 数乘
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Len 向量长度
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Rect 轴对齐矩形（宿主布局测量结果）
type Rect struct {
	X, Y          float64 // 左上角
	Width, Height float64
}

// Center 矩形中心点
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains 判断点是否在矩形内（含左上边界，不含右下边界）
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty 宽或高为 0 的矩形视为尚未布局
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
