package motion

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/physics"
	"github.com/decker502/studyjam/pkg/signal"
	"github.com/decker502/studyjam/pkg/utils"
)

// Spec is the general TransformSpec of a region.
type Spec struct {
	// Key identifies the region in logs; a random key is generated when empty.
	Key string

	// Bindings map input sources through curves onto channels.
	// Bindings on the same channel add up.
	Bindings []BindingSpec
	// Springs makes a channel follow its target through a spring.
	// Channels without a spring jump straight to their target.
	Springs map[Channel]SpringParams

	// Loops play continuously while the region is visible.
	Loops []TrackSpec
	// Transitions are one-shot timelines started with Region.Trigger.
	// A transition named "enter" starts when the region first becomes visible.
	Transitions map[string][]TrackSpec

	// Proximity gates pointer sources by distance from the region center.
	Proximity *Proximity
	// Scroll tracks a scroll range for SourceScroll.
	Scroll *ScrollSpec

	// Order is the composition order reported in Output; defaults to
	// translate, rotate, scale, opacity.
	Order []Channel

	// Bounds is the initial layout measurement. A zero rect means "not laid out yet".
	Bounds utils.Rect
	// Hidden regions do not play loops until SetVisible(true).
	Hidden bool

	// RestSpeed and RestDelta are the settle thresholds (vEps, pEps).
	RestSpeed float64
	RestDelta float64
}

// BindingSpec maps one source onto one channel.
type BindingSpec struct {
	Source  Source
	From    Channel // for SourceDerived
	Channel Channel
	Domain  []float64
	Range   []float64
	Ease    string
}

// TrackSpec is either a keyframe timeline (Values set) or a sine
// oscillator (Period and Amplitude set).
type TrackSpec struct {
	Channel Channel

	Times    []float64 // defaults to evenly spaced
	Values   []float64
	Ease     string
	Duration time.Duration
	Delay    time.Duration

	Period    time.Duration
	Amplitude float64
	Phase     float64
}

// ScrollSpec is a tracked scroll range.
type ScrollSpec struct {
	Start float64
	End   float64
}

const enterTransition = "enter"

// withField prefixes the field of a ConfigError.
func withField(prefix string, err error) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return &ConfigError{Field: prefix + "." + cfgErr.Field, Value: cfgErr.Value, Reason: cfgErr.Reason}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

func configErr(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// regionComponents is a validated spec, ready to be attached to an entity.
type regionComponents struct {
	region      *components.RegionComponent
	input       *components.InputComponent
	bindings    *components.BindingComponent
	motion      *components.MotionComponent
	timelines   *components.TimelineComponent
	usesPointer bool
}

func buildTrack(field string, ts TrackSpec, repeat bool) (components.TrackBinding, error) {
	if !ts.Channel.Valid() {
		return components.TrackBinding{}, configErr(field+".channel", ts.Channel, "unknown channel")
	}
	if len(ts.Values) == 0 {
		if repeat && ts.Period != 0 {
			osc := &physics.Oscillator{Amplitude: ts.Amplitude, Period: ts.Period, Phase: ts.Phase}
			if err := osc.Validate(); err != nil {
				return components.TrackBinding{}, withField(field, err)
			}
			if !finite(ts.Amplitude) {
				return components.TrackBinding{}, configErr(field+".amplitude", ts.Amplitude, "must be finite")
			}
			return components.TrackBinding{Channel: ts.Channel, Track: osc}, nil
		}
		return components.TrackBinding{}, configErr(field+".values", ts.Values, "needs keyframe values or an oscillator period")
	}
	times := ts.Times
	if len(times) == 0 {
		times = physics.EvenTimes(len(ts.Values))
	}
	tl, err := physics.NewTimeline(times, ts.Values, ts.Ease, ts.Duration, repeat)
	if err != nil {
		return components.TrackBinding{}, withField(field, err)
	}
	tl.Delay = ts.Delay
	if err := tl.Validate(); err != nil {
		return components.TrackBinding{}, withField(field, err)
	}
	return components.TrackBinding{Channel: ts.Channel, Track: tl}, nil
}

// build validates the spec. Nothing is clamped: every bad value is a ConfigError.
func (s Spec) build() (*regionComponents, error) {
	rc := &regionComponents{
		region: &components.RegionComponent{
			Key:     s.Key,
			Visible: !s.Hidden,
			Order:   components.DefaultOrder,
		},
		input:     &components.InputComponent{},
		bindings:  &components.BindingComponent{},
		motion:    &components.MotionComponent{RestSpeed: physics.DefaultRestSpeed, RestDelta: physics.DefaultRestDelta},
		timelines: &components.TimelineComponent{Transitions: make(map[string][]components.TrackBinding)},
	}

	if s.RestSpeed < 0 || !finite(s.RestSpeed) {
		return nil, configErr("restSpeed", s.RestSpeed, "must not be negative")
	}
	if s.RestDelta < 0 || !finite(s.RestDelta) {
		return nil, configErr("restDelta", s.RestDelta, "must not be negative")
	}
	if s.RestSpeed > 0 {
		rc.motion.RestSpeed = s.RestSpeed
	}
	if s.RestDelta > 0 {
		rc.motion.RestDelta = s.RestDelta
	}

	if len(s.Order) > 0 {
		for i, ch := range s.Order {
			if !ch.Valid() {
				return nil, configErr(fmt.Sprintf("order[%d]", i), ch, "unknown channel")
			}
		}
		rc.region.Order = append([]Channel(nil), s.Order...)
	}

	if s.Bounds.Width < 0 || s.Bounds.Height < 0 {
		return nil, configErr("bounds", s.Bounds, "negative size")
	}
	if !s.Bounds.Empty() {
		rc.region.Bounds = s.Bounds
		rc.region.Measured = true
	}

	if s.Proximity != nil {
		if err := s.Proximity.Validate(); err != nil {
			return nil, err
		}
		p := *s.Proximity
		rc.input.Proximity = &p
	}

	if s.Scroll != nil {
		if !finite(s.Scroll.Start) || !finite(s.Scroll.End) {
			return nil, configErr("scroll", *s.Scroll, "must be finite")
		}
		if s.Scroll.Start > s.Scroll.End {
			return nil, configErr("scroll", *s.Scroll, "inverted range (start > end)")
		}
		rc.input.Scroll = &signal.ScrollRegion{Start: s.Scroll.Start, End: s.Scroll.End}
	}

	for i, b := range s.Bindings {
		field := fmt.Sprintf("bindings[%d]", i)
		if !b.Channel.Valid() {
			return nil, configErr(field+".channel", b.Channel, "unknown channel")
		}
		if b.Source < components.SourcePointerX || b.Source > components.SourceDerived {
			return nil, configErr(field+".source", b.Source, "unknown source")
		}
		curve, err := physics.NewCurve(b.Domain, b.Range, b.Ease)
		if err != nil {
			return nil, withField(field, err)
		}
		binding := components.Binding{Source: b.Source, From: b.From, Channel: b.Channel, Curve: curve}
		switch b.Source {
		case components.SourceDerived:
			if !b.From.Valid() {
				return nil, configErr(field+".from", b.From, "unknown channel")
			}
			if b.From == b.Channel {
				return nil, configErr(field+".from", b.From, "cannot derive a channel from itself")
			}
			rc.bindings.Derived = append(rc.bindings.Derived, binding)
			continue
		case components.SourceScroll:
			if rc.input.Scroll == nil {
				return nil, configErr(field+".source", b.Source, "scroll binding without a scroll range")
			}
		case components.SourcePointerX, components.SourcePointerY,
			components.SourceHoverX, components.SourceHoverY, components.SourceHover:
			rc.usesPointer = true
		}
		rc.bindings.Bindings = append(rc.bindings.Bindings, binding)
	}

	for ch, params := range s.Springs {
		if !ch.Valid() {
			return nil, configErr("springs", ch, "unknown channel")
		}
		if err := params.Validate("springs." + ch.String()); err != nil {
			return nil, err
		}
		rc.motion.Channels[ch].Spring = physics.NewSpring(params, 0)
	}

	for i, ts := range s.Loops {
		tb, err := buildTrack(fmt.Sprintf("loops[%d]", i), ts, true)
		if err != nil {
			return nil, err
		}
		rc.timelines.Loops = append(rc.timelines.Loops, tb)
	}

	for name, tracks := range s.Transitions {
		if len(tracks) == 0 {
			return nil, configErr("transitions."+name, tracks, "empty transition")
		}
		for i, ts := range tracks {
			tb, err := buildTrack(fmt.Sprintf("transitions.%s[%d]", name, i), ts, false)
			if err != nil {
				return nil, err
			}
			rc.timelines.Transitions[name] = append(rc.timelines.Transitions[name], tb)
		}
	}

	return rc, nil
}

// Validate 校验 Spec，不创建实例（预设文件加载时使用）
func (s Spec) Validate() error {
	_, err := s.build()
	return err
}
