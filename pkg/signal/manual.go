package signal

import "github.com/decker502/studyjam/pkg/utils"

type manualListener struct {
	fn   func(Signal)
	live bool
}

// ManualSurface 由调用方主动推送事件的宿主
// 用于测试、无界面模拟，以及自行轮询输入的宿主（ebiten、终端）
type ManualSurface struct {
	listeners     map[Kind][]*manualListener
	registrations map[Kind]int
}

// NewManualSurface 创建手动宿主
func NewManualSurface() *ManualSurface {
	return &ManualSurface{
		listeners:     make(map[Kind][]*manualListener),
		registrations: make(map[Kind]int),
	}
}

// Listen 注册全局监听
func (m *ManualSurface) Listen(kind Kind, fn func(Signal)) func() {
	l := &manualListener{fn: fn, live: true}
	m.listeners[kind] = append(m.listeners[kind], l)
	m.registrations[kind]++
	return func() {
		if !l.live {
			return
		}
		l.live = false
		cur := m.listeners[kind]
		next := make([]*manualListener, 0, len(cur))
		for _, x := range cur {
			if x != l {
				next = append(next, x)
			}
		}
		m.listeners[kind] = next
	}
}

// Listeners 当前注册的监听器数量
func (m *ManualSurface) Listeners(kind Kind) int {
	return len(m.listeners[kind])
}

// Registrations 累计注册次数
func (m *ManualSurface) Registrations(kind Kind) int {
	return m.registrations[kind]
}

// Emit 推送一个事件给所有监听器
func (m *ManualSurface) Emit(sig Signal) {
	for _, l := range m.listeners[sig.Kind] {
		if l.live {
			l.fn(sig)
		}
	}
}

// MovePointer 推送指针移动
func (m *ManualSurface) MovePointer(x, y float64) {
	m.Emit(Signal{Kind: KindPointer, Pointer: utils.Vec2{X: x, Y: y}})
}

// Scroll 推送滚动偏移
func (m *ManualSurface) Scroll(y float64) {
	m.Emit(Signal{Kind: KindScroll, ScrollY: y})
}
