package components

import (
	"time"

	"github.com/decker502/studyjam/pkg/physics"
)

// TrackBinding 把一条时间曲线叠加到一个通道上
type TrackBinding struct {
	Channel Channel
	Track   physics.Track
}

// RunningTransition 正在播放的一次性过渡
type RunningTransition struct {
	Name    string
	Started time.Duration
	Tracks  []TrackBinding
}

// TimelineComponent 区域的循环动画与一次性过渡
type TimelineComponent struct {
	// 区域可见时持续播放，以 RegionComponent.Mounted 为零点
	Loops []TrackBinding
	// 按名称触发
	Transitions map[string][]TrackBinding
	Running     []RunningTransition

	// 本帧时间轴在各通道上的叠加量
	Offsets [ChannelCount]float64

	// 降级后循环停止
	LoopsStopped bool
}
