package components

import (
	"fmt"

	"github.com/decker502/studyjam/pkg/physics"
)

// Channel 一个可动画的输出标量
type Channel int

const (
	ChannelX Channel = iota
	ChannelY
	ChannelRotate
	ChannelRotateX
	ChannelRotateY
	ChannelScale
	ChannelOpacity
	ChannelProgress

	// ChannelCount 通道总数
	ChannelCount
)

var channelNames = [ChannelCount]string{
	"x", "y", "rotate", "rotateX", "rotateY", "scale", "opacity", "progress",
}

func (c Channel) String() string {
	if c < 0 || c >= ChannelCount {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid 是否为已知通道
func (c Channel) Valid() bool {
	return c >= 0 && c < ChannelCount
}

// Neutral 通道的中性值：scale / opacity 为 1，其余为 0
// 绑定与时间轴产生的都是相对中性值的偏移
func (c Channel) Neutral() float64 {
	switch c {
	case ChannelScale, ChannelOpacity:
		return 1
	default:
		return 0
	}
}

// ParseChannel 按名称查找通道
func ParseChannel(name string) (Channel, bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// DefaultOrder 默认合成顺序：平移 → 旋转 → 缩放 → 透明度
var DefaultOrder = []Channel{
	ChannelX, ChannelY, ChannelRotate, ChannelRotateX, ChannelRotateY, ChannelScale, ChannelOpacity,
}

// Source 绑定的输入来源
type Source int

const (
	// SourcePointerX / SourcePointerY 指针相对区域中心的偏移（经过接近度门控）
	SourcePointerX Source = iota
	SourcePointerY
	// SourceHoverX / SourceHoverY 区域内的归一化指针位置 [-1, 1]，区域外为 0
	SourceHoverX
	SourceHoverY
	// SourceHover 指针在区域内为 1，否则为 0
	SourceHover
	// SourceScroll 滚动区间进度 [0, 1]
	SourceScroll
	// SourceInput 宿主直接设置的标量（开关状态等）
	SourceInput
	// SourceDerived 另一个通道积分后的值，在积分之后计算
	SourceDerived
)

var sourceNames = [...]string{
	"pointerX", "pointerY", "hoverX", "hoverY", "hover", "scroll", "input", "derived",
}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return fmt.Sprintf("Source(%d)", int(s))
	}
	return sourceNames[s]
}

// ParseSource 按名称查找输入来源
func ParseSource(name string) (Source, bool) {
	for i, n := range sourceNames {
		if n == name {
			return Source(i), true
		}
	}
	return 0, false
}

// Binding 把一个输入来源经过曲线映射到一个通道
// 同一通道上的多个绑定相加
type Binding struct {
	Source  Source
	From    Channel // 仅 SourceDerived 使用
	Channel Channel
	Curve   physics.Curve
}
