// Package signal 提供归一化的输入信号：指针位置、滚动偏移和帧时钟。
//
// 宿主（ebiten 窗口、终端、脚本）通过 Surface 提供全局监听；
// Hub 对每种信号只向宿主注册一个监听器，再在内部扇出给所有订阅者。
package signal

import (
	"fmt"
	"time"

	"github.com/decker502/studyjam/pkg/utils"
)

// Kind 信号类型
type Kind int

const (
	KindPointer Kind = iota
	KindScroll
	KindClock

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindScroll:
		return "scroll"
	case KindClock:
		return "clock"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Signal 一次带时间戳的输入
//
// Pointer 为视口绝对坐标，实例相对坐标由各实例根据自己的测量结果计算；
// ScrollY 为原始滚动偏移，由 ScrollRegion 归一化；
// Delta 为帧时钟距上一帧的时间。
type Signal struct {
	Kind      Kind
	Pointer   utils.Vec2
	ScrollY   float64
	Delta     time.Duration
	Timestamp time.Duration
}

// Surface 宿主提供的全局监听注册表（相当于 window 上的 mousemove / scroll）
// 只承担 Pointer 和 Scroll；Clock 由 Hub 在每帧 Flush 时产生
type Surface interface {
	Listen(kind Kind, fn func(Signal)) (remove func())
}

// ScrollRegion 页面中被跟踪的滚动区间
type ScrollRegion struct {
	Start    float64
	End      float64
	Progress float64
}

// Update 按 clamp((scrollY - start) / (end - start), 0, 1) 重新计算进度
// start == end 时进度固定为 0.5
func (r *ScrollRegion) Update(scrollY float64) float64 {
	if r.Start == r.End {
		r.Progress = 0.5
		return r.Progress
	}
	r.Progress = utils.Clamp((scrollY-r.Start)/(r.End-r.Start), 0, 1)
	return r.Progress
}
