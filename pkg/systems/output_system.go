package systems

import (
	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
)

// OutputSystem 合成最终通道值：中性值 + 弹簧/目标 + 时间轴偏移 + 派生绑定
type OutputSystem struct {
	entityManager *ecs.EntityManager
}

// NewOutputSystem 创建输出合成系统
func NewOutputSystem(em *ecs.EntityManager) *OutputSystem {
	return &OutputSystem{entityManager: em}
}

// Update 重新合成一个区域的输出
func (s *OutputSystem) Update(id ecs.EntityID) {
	motion, ok := ecs.GetComponent[*components.MotionComponent](s.entityManager, id)
	if !ok {
		return
	}
	out, ok := ecs.GetComponent[*components.OutputComponent](s.entityManager, id)
	if !ok {
		return
	}

	var offsets [components.ChannelCount]float64
	if tl, ok := ecs.GetComponent[*components.TimelineComponent](s.entityManager, id); ok {
		offsets = tl.Offsets
	}

	for ch := components.Channel(0); ch < components.ChannelCount; ch++ {
		out.Values[ch] = ch.Neutral() + motion.Channels[ch].Value + offsets[ch]
	}

	// 派生绑定读取积分后的值（不含时间轴偏移）
	if bindings, ok := ecs.GetComponent[*components.BindingComponent](s.entityManager, id); ok {
		for _, b := range bindings.Derived {
			out.Values[b.Channel] += b.Curve.Eval(motion.Channels[b.From].Value)
		}
	}
}
