package textfx

import (
	"fmt"
	"time"

	"github.com/decker502/studyjam/pkg/motion"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/utils"
)

// DefaultSwapInterval 换词间隔
const DefaultSwapInterval = 3000 * time.Millisecond

// WordSwapper 按固定间隔循环切换单词
type WordSwapper struct {
	words    []string
	interval time.Duration
	onChange func(index int)

	index  int
	acc    time.Duration
	paused bool

	sub *signal.Subscription
}

// NewWordSwapper 创建换词器，interval 为 0 时使用 DefaultSwapInterval
func NewWordSwapper(words []string, interval time.Duration) (*WordSwapper, error) {
	if len(words) == 0 {
		return nil, &motion.ConfigError{Field: "words", Value: words, Reason: "must not be empty"}
	}
	if interval == 0 {
		interval = DefaultSwapInterval
	}
	if interval < 0 {
		return nil, &motion.ConfigError{Field: "interval", Value: interval, Reason: "must be positive"}
	}
	return &WordSwapper{
		words:    append([]string(nil), words...),
		interval: interval,
	}, nil
}

// OnChange 设置切换回调
func (ws *WordSwapper) OnChange(fn func(index int)) {
	ws.onChange = fn
}

// Attach 订阅信号中心的帧时钟
func (ws *WordSwapper) Attach(hub *signal.Hub) *WordSwapper {
	ws.Close()
	ws.sub = hub.Subscribe(signal.KindClock, func(sig signal.Signal) {
		ws.Advance(sig.Delta)
	})
	return ws
}

// Close 取消时钟订阅，重复调用是安全的
func (ws *WordSwapper) Close() {
	if ws.sub != nil {
		ws.sub.Cancel()
		ws.sub = nil
	}
}

// Advance 推进 d 时间；暂停中或只有一个单词时不切换
func (ws *WordSwapper) Advance(d time.Duration) {
	if ws.paused || len(ws.words) <= 1 || d <= 0 {
		return
	}
	ws.acc += d
	for ws.acc >= ws.interval {
		ws.acc -= ws.interval
		ws.set((ws.index + 1) % len(ws.words))
	}
}

func (ws *WordSwapper) set(i int) {
	if i == ws.index {
		return
	}
	ws.index = i
	if ws.onChange != nil {
		ws.onChange(i)
	}
}

// Pause 暂停切换（例如指针悬停时）
func (ws *WordSwapper) Pause() {
	ws.paused = true
}

// Resume 恢复切换，间隔重新计时
func (ws *WordSwapper) Resume() {
	if !ws.paused {
		return
	}
	ws.paused = false
	ws.acc = 0
}

// Paused 是否暂停
func (ws *WordSwapper) Paused() bool {
	return ws.paused
}

// Select 直接跳到第 i 个单词，间隔重新计时
func (ws *WordSwapper) Select(i int) error {
	if i < 0 || i >= len(ws.words) {
		return fmt.Errorf("select word %d of %d: %w", i, len(ws.words), motion.ErrInvalidConfig)
	}
	ws.acc = 0
	ws.set(i)
	return nil
}

// Index 当前单词下标
func (ws *WordSwapper) Index() int {
	return ws.index
}

// Current 当前单词
func (ws *WordSwapper) Current() string {
	return ws.words[ws.index]
}

// Words 单词数量
func (ws *WordSwapper) Words() int {
	return len(ws.words)
}

// Progress 当前间隔已经过的比例 [0, 1)
func (ws *WordSwapper) Progress() float64 {
	return float64(ws.acc) / float64(ws.interval)
}

// Underline 下划线宽度比例：一个间隔内 0 -> 1 -> 0，两端平缓
func (ws *WordSwapper) Underline() float64 {
	p := ws.Progress()
	if p < 0.5 {
		return utils.EaseInOutSine(p * 2)
	}
	return utils.EaseInOutSine((1 - p) * 2)
}
