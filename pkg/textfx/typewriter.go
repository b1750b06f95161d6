// Package textfx 基于帧时钟的文字特效：打字机和循环换词。
//
// 两者都只依赖时间推进，可以手动 Advance，也可以 Attach 到引擎的信号中心，
// 作为 Clock 订阅者随每帧推进。
package textfx

import (
	"time"

	"github.com/decker502/studyjam/pkg/motion"
	"github.com/decker502/studyjam/pkg/signal"
)

// TypewriterOptions 打字机参数
type TypewriterOptions struct {
	Speed       time.Duration // 每个字符的间隔
	Delay       time.Duration // 开始前的等待，只在第一轮生效
	Loop        bool
	Pause       time.Duration // 循环模式下打完后停留的时间
	Cursor      bool
	CursorBlink time.Duration
	OnComplete  func()
}

// DefaultTypewriterOptions 默认参数
func DefaultTypewriterOptions() TypewriterOptions {
	return TypewriterOptions{
		Speed:       50 * time.Millisecond,
		Pause:       2000 * time.Millisecond,
		Cursor:      true,
		CursorBlink: 530 * time.Millisecond,
	}
}

// Validate 检查参数
func (o TypewriterOptions) Validate() error {
	if o.Speed <= 0 {
		return &motion.ConfigError{Field: "speed", Value: o.Speed, Reason: "must be positive"}
	}
	if o.Delay < 0 {
		return &motion.ConfigError{Field: "delay", Value: o.Delay, Reason: "must not be negative"}
	}
	if o.Loop && o.Pause <= 0 {
		return &motion.ConfigError{Field: "pause", Value: o.Pause, Reason: "must be positive when looping"}
	}
	if o.Cursor && o.CursorBlink <= 0 {
		return &motion.ConfigError{Field: "cursorBlink", Value: o.CursorBlink, Reason: "must be positive"}
	}
	return nil
}

// Typewriter 逐字显示文本
//
// 状态完全由累计时间决定：一帧跨过多个字符时一次补齐，
// 循环模式下跨过整轮时 OnComplete 按轮数补发。
type Typewriter struct {
	text []rune
	opts TypewriterOptions

	elapsed     time.Duration
	shown       int
	completions int

	sub *signal.Subscription
}

// NewTypewriter 创建打字机
func NewTypewriter(text string, opts TypewriterOptions) (*Typewriter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Typewriter{text: []rune(text), opts: opts}, nil
}

// Attach 订阅信号中心的帧时钟，重复调用会替换之前的订阅
func (tw *Typewriter) Attach(hub *signal.Hub) *Typewriter {
	tw.Close()
	tw.sub = hub.Subscribe(signal.KindClock, func(sig signal.Signal) {
		tw.Advance(sig.Delta)
	})
	return tw
}

// Close 取消时钟订阅，重复调用是安全的
func (tw *Typewriter) Close() {
	if tw.sub != nil {
		tw.sub.Cancel()
		tw.sub = nil
	}
}

// Advance 推进 d 时间
func (tw *Typewriter) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	tw.elapsed += d

	shown, completions := tw.at(tw.elapsed)
	tw.shown = shown
	for ; tw.completions < completions; tw.completions++ {
		if tw.opts.OnComplete != nil {
			tw.opts.OnComplete()
		}
	}
}

// at 计算时间 t 时已显示的字符数和已完成的轮数
func (tw *Typewriter) at(t time.Duration) (shown, completions int) {
	t -= tw.opts.Delay
	if t < 0 {
		return 0, 0
	}
	n := len(tw.text)
	typing := time.Duration(n) * tw.opts.Speed

	if tw.opts.Loop {
		cycle := typing + tw.opts.Pause
		completions = int(t / cycle)
		t %= cycle
	}
	if t >= typing {
		return n, completions + 1
	}
	return int(t / tw.opts.Speed), completions
}

// Visible 当前已显示的文本
func (tw *Typewriter) Visible() string {
	return string(tw.text[:tw.shown])
}

// Done 全部字符都已显示
// 循环模式下在停留阶段为 true，下一轮开始后重新变为 false
func (tw *Typewriter) Done() bool {
	return tw.shown == len(tw.text) && tw.elapsed >= tw.opts.Delay
}

// CursorVisible 光标在当前时刻是否可见
func (tw *Typewriter) CursorVisible() bool {
	if !tw.opts.Cursor {
		return false
	}
	return (tw.elapsed/tw.opts.CursorBlink)%2 == 0
}

// Reset 回到初始状态（包括开始前的等待）
func (tw *Typewriter) Reset() {
	tw.elapsed = 0
	tw.shown = 0
	tw.completions = 0
}
