// Package motion is the public face of the interaction-driven transform engine.
//
// An Engine owns one signal hub, one scheduler and every region and emitter
// created from it. Hosts feed it input through a signal.Surface, call Frame
// once per display frame, and read plain channel values back from each
// Region's Output. The engine never draws anything itself.
//
//	engine := motion.NewEngine(surface, motion.WithLogger(logger))
//	hero, err := engine.CreateAnimatedRegion(motion.DefaultOptions())
//	...
//	engine.Frame(now)
//	out, err := hero.Output()
package motion

import (
	"errors"

	"github.com/decker502/studyjam/pkg/components"
	"github.com/decker502/studyjam/pkg/physics"
)

// Re-exported types so hosts only need to import motion.
type (
	Channel        = components.Channel
	Source         = components.Source
	RegionState    = components.RegionState
	OverflowPolicy = components.OverflowPolicy
	EmitterMode    = components.EmitterMode
	ParticleParams = components.ParticleParams
	ParamsFactory  = components.ParamsFactory

	SpringParams = physics.SpringParams
	Proximity    = physics.Proximity
	Falloff      = physics.Falloff
	Integrator   = physics.Integrator

	// ConfigError is returned when a spec is rejected at creation time.
	ConfigError = physics.ConfigError
)

const (
	ChannelX        = components.ChannelX
	ChannelY        = components.ChannelY
	ChannelRotate   = components.ChannelRotate
	ChannelRotateX  = components.ChannelRotateX
	ChannelRotateY  = components.ChannelRotateY
	ChannelScale    = components.ChannelScale
	ChannelOpacity  = components.ChannelOpacity
	ChannelProgress = components.ChannelProgress

	SourcePointerX = components.SourcePointerX
	SourcePointerY = components.SourcePointerY
	SourceHoverX   = components.SourceHoverX
	SourceHoverY   = components.SourceHoverY
	SourceHover    = components.SourceHover
	SourceScroll   = components.SourceScroll
	SourceInput    = components.SourceInput
	SourceDerived  = components.SourceDerived

	RegionIdle   = components.RegionIdle
	RegionActive = components.RegionActive

	PolicySkip        = components.PolicySkip
	PolicyEvictOldest = components.PolicyEvictOldest

	EmitPointer    = components.EmitPointer
	EmitAutonomous = components.EmitAutonomous
	EmitBurst      = components.EmitBurst

	FalloffHard = physics.FalloffHard
	FalloffSoft = physics.FalloffSoft
)

var (
	// ErrDisposed is wrapped by every handle method called after Dispose.
	ErrDisposed = errors.New("handle already disposed")
	// ErrClosed is returned when creating instances on a closed engine.
	ErrClosed = errors.New("engine closed")
	// ErrUnknownTransition is returned by Region.Trigger for an unknown name.
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrInvalidConfig matches every *ConfigError via errors.Is.
	ErrInvalidConfig = physics.ErrInvalidConfig
)

// Output is one frame of composed channel values for a region.
// Translation is in pixels, rotations in degrees, scale and opacity are factors.
type Output struct {
	X        float64
	Y        float64
	Rotate   float64
	RotateX  float64
	RotateY  float64
	Scale    float64
	Opacity  float64
	Progress float64

	// Order is the composition order the host applies transforms in.
	Order []Channel
}

// Value returns a channel by id.
func (o Output) Value(ch Channel) float64 {
	switch ch {
	case ChannelX:
		return o.X
	case ChannelY:
		return o.Y
	case ChannelRotate:
		return o.Rotate
	case ChannelRotateX:
		return o.RotateX
	case ChannelRotateY:
		return o.RotateY
	case ChannelScale:
		return o.Scale
	case ChannelOpacity:
		return o.Opacity
	case ChannelProgress:
		return o.Progress
	default:
		return 0
	}
}

func outputFrom(values [components.ChannelCount]float64, order []Channel) Output {
	return Output{
		X:        values[ChannelX],
		Y:        values[ChannelY],
		Rotate:   values[ChannelRotate],
		RotateX:  values[ChannelRotateX],
		RotateY:  values[ChannelRotateY],
		Scale:    values[ChannelScale],
		Opacity:  values[ChannelOpacity],
		Progress: values[ChannelProgress],
		Order:    append([]Channel(nil), order...),
	}
}

// NeutralOutput is the static output of an element with no animation applied.
func NeutralOutput() Output {
	var values [components.ChannelCount]float64
	for ch := range values {
		values[ch] = Channel(ch).Neutral()
	}
	return outputFrom(values, components.DefaultOrder)
}
