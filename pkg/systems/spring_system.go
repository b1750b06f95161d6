package systems

import (
	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/ecs"
	"github.com/decker502/studyjam/pkg/physics"
)

// SpringSystem 推进各通道的弹簧
type SpringSystem struct {
	entityManager *ecs.EntityManager
	integrator    physics.Integrator
}

// NewSpringSystem 创建弹簧系统，integrator 为 nil 时使用半隐式欧拉
func NewSpringSystem(em *ecs.EntityManager, integrator physics.Integrator) *SpringSystem {
	if integrator == nil {
		integrator = physics.EulerIntegrator{}
	}
	return &SpringSystem{entityManager: em, integrator: integrator}
}

// Update 推进 dt 秒，返回所有弹簧是否都已静止
func (s *SpringSystem) Update(id ecs.EntityID, dt float64) bool {
	motion, ok := ecs.GetComponent[*components.MotionComponent](s.entityManager, id)
	if !ok {
		return true
	}
	settled := true
	for ch := range motion.Channels {
		state := &motion.Channels[ch]
		if state.Spring == nil {
			state.Value = state.Target
			continue
		}
		state.Spring.Target = state.Target
		s.integrator.Integrate(state.Spring, dt)
		state.Value = state.Spring.Position
		if !state.Spring.Settled(motion.RestSpeed, motion.RestDelta) {
			settled = false
		}
	}
	return settled
}

// Snap 所有通道直接停在目标上
func (s *SpringSystem) Snap(id ecs.EntityID) {
	motion, ok := ecs.GetComponent[*components.MotionComponent](s.entityManager, id)
	if !ok {
		return
	}
	for ch := range motion.Channels {
		state := &motion.Channels[ch]
		if state.Spring != nil {
			state.Spring.Target = state.Target
			state.Spring.Snap()
		}
		state.Value = state.Target
	}
}
