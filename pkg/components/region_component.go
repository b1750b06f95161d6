package components

import (
	"time"

	"github.com/decker502/studyjam/pkg/physics"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/utils"
)

// RegionState 区域的调度状态
type RegionState int

const (
	RegionIdle RegionState = iota
	RegionActive
)

func (s RegionState) String() string {
	if s == RegionActive {
		return "active"
	}
	return "idle"
}

// RegionComponent 一个动画区域（页面上的一个元素）
//
// This is a pure data component; the scheduler and its systems own all behavior.
type RegionComponent struct {
	Key string

	// 宿主布局测量结果；Measured 为 false 时指针类输入视为中性
	Bounds   utils.Rect
	Measured bool

	Visible bool
	Entered bool // 已播放过 enter 过渡

	State RegionState
	Order []Channel

	// 创建时的帧时间，循环动画以此为零点
	Mounted time.Duration

	Degraded bool
}

// InputComponent 区域最近一次收到的输入
type InputComponent struct {
	Pointer    utils.Vec2
	HasPointer bool

	// 为 nil 时不做距离门控
	Proximity *physics.Proximity

	// 为 nil 时不跟踪滚动
	Scroll *signal.ScrollRegion

	// SourceInput 的值
	Input float64
}

// BindingComponent 区域的输入绑定
type BindingComponent struct {
	Bindings []Binding
	// Derived 读取其他通道积分结果的绑定，在输出阶段计算
	Derived []Binding
}

// ChannelState 单个通道的目标值与当前值（均为相对中性值的偏移）
type ChannelState struct {
	Target float64
	Value  float64
	// 为 nil 时 Value 直接跟随 Target
	Spring *physics.Spring
}

// MotionComponent 区域所有通道的积分状态
type MotionComponent struct {
	Channels  [ChannelCount]ChannelState
	RestSpeed float64 // vEps
	RestDelta float64 // pEps
}

// OutputComponent 本帧合成后的通道值（绝对值，宿主直接使用）
type OutputComponent struct {
	Values [ChannelCount]float64
}
