package signal

import (
	"time"

	"go.uber.org/zap"
)

// Subscription 一个订阅者
type Subscription struct {
	hub  *Hub
	kind Kind
	fn   func(Signal)
	live bool
}

// Kind 订阅的信号类型
func (s *Subscription) Kind() Kind {
	return s.kind
}

// Live 是否仍在订阅
func (s *Subscription) Live() bool {
	return s.live
}

// Cancel 取消订阅，重复调用是安全的
// 最后一个订阅者取消时，同时移除宿主上的全局监听
func (s *Subscription) Cancel() {
	if !s.live {
		return
	}
	s.live = false
	s.hub.release(s)
}

// Hub 引用计数的信号注册表
//
// 同一种信号无论有多少订阅者，宿主上都只有一个监听器。
// Pointer / Scroll 事件合并后每帧最多分发一次；
// 分发时遍历快照，期间取消的订阅者不再被调用，期间新增的订阅者从下一次 Flush 开始生效。
// Hub 不是并发安全的，所有调用都应在帧循环所在的 goroutine 上进行。
type Hub struct {
	surface Surface
	logger  *zap.Logger

	subs    [kindCount][]*Subscription
	removes [kindCount]func()

	pending    [kindCount]Signal
	hasPending [kindCount]bool
	latest     [kindCount]Signal
	hasLatest  [kindCount]bool

	lastFlush time.Duration
	flushed   bool
}

// NewHub 创建信号注册表
func NewHub(surface Surface, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{surface: surface, logger: logger}
}

// Subscribe 订阅一种信号
func (h *Hub) Subscribe(kind Kind, fn func(Signal)) *Subscription {
	sub := &Subscription{hub: h, kind: kind, fn: fn, live: true}

	// 写时复制：正在进行的分发持有旧切片
	next := make([]*Subscription, len(h.subs[kind]), len(h.subs[kind])+1)
	copy(next, h.subs[kind])
	h.subs[kind] = append(next, sub)

	if len(next) == 0 {
		h.acquire(kind)
	}
	return sub
}

func (h *Hub) acquire(kind Kind) {
	if kind == KindClock || h.surface == nil {
		return
	}
	h.removes[kind] = h.surface.Listen(kind, func(sig Signal) {
		sig.Kind = kind
		h.pending[kind] = sig
		h.hasPending[kind] = true
	})
	h.logger.Debug("global listener registered", zap.Stringer("kind", kind))
}

func (h *Hub) release(sub *Subscription) {
	kind := sub.kind
	cur := h.subs[kind]
	next := make([]*Subscription, 0, len(cur))
	for _, s := range cur {
		if s != sub {
			next = append(next, s)
		}
	}
	h.subs[kind] = next

	if len(next) == 0 && h.removes[kind] != nil {
		h.removes[kind]()
		h.removes[kind] = nil
		h.hasPending[kind] = false
		h.logger.Debug("global listener removed", zap.Stringer("kind", kind))
	}
}

// Refs 当前订阅者数量
func (h *Hub) Refs(kind Kind) int {
	return len(h.subs[kind])
}

// Registered 宿主上是否存在该信号的全局监听
// Clock 从不注册到宿主
func (h *Hub) Registered(kind Kind) bool {
	return h.removes[kind] != nil
}

// Latest 返回最近一次分发的信号
func (h *Hub) Latest(kind Kind) (Signal, bool) {
	return h.latest[kind], h.hasLatest[kind]
}

// Flush 分发本帧合并后的 Pointer / Scroll 信号，然后分发一次 Clock
func (h *Hub) Flush(now time.Duration) {
	for _, kind := range []Kind{KindPointer, KindScroll} {
		if !h.hasPending[kind] {
			continue
		}
		sig := h.pending[kind]
		h.hasPending[kind] = false
		sig.Timestamp = now
		h.dispatch(kind, sig)
	}

	var delta time.Duration
	if h.flushed {
		delta = now - h.lastFlush
	}
	h.lastFlush = now
	h.flushed = true
	h.dispatch(KindClock, Signal{Kind: KindClock, Delta: delta, Timestamp: now})
}

func (h *Hub) dispatch(kind Kind, sig Signal) {
	h.latest[kind] = sig
	h.hasLatest[kind] = true

	snapshot := h.subs[kind]
	for _, sub := range snapshot {
		if !sub.live {
			continue
		}
		sub.fn(sig)
	}
}

// Close 取消所有订阅并移除宿主监听
func (h *Hub) Close() {
	for kind := range h.subs {
		for _, sub := range h.subs[kind] {
			sub.Cancel()
		}
	}
}
