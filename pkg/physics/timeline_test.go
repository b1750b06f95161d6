package physics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatTimeline(t *testing.T) *Timeline {
	t.Helper()
	tl, err := NewTimeline(
		[]float64{0, 0.25, 0.5, 0.75, 1},
		[]float64{0, -10, 0, 10, 0},
		"Linear", 4*time.Second, true,
	)
	require.NoError(t, err)
	return tl
}

func TestTimelineLoop(t *testing.T) {
	tl := floatTimeline(t)

	assert.InDelta(t, 0, tl.Value(0), 1e-9)
	assert.InDelta(t, -10, tl.Value(time.Second), 1e-9)
	assert.InDelta(t, -5, tl.Value(500*time.Millisecond), 1e-9)
	assert.InDelta(t, 10, tl.Value(3*time.Second), 1e-9)
	// 循环：第二圈与第一圈相同
	assert.InDelta(t, tl.Value(time.Second), tl.Value(5*time.Second), 1e-9)
	assert.False(t, tl.Done(time.Hour))
}

func TestTimelineOneShot(t *testing.T) {
	tl, err := NewTimeline([]float64{0, .2, .4, .6, .8, 1}, []float64{0, -4, 4, -4, 4, 0}, "", 600*time.Millisecond, false)
	require.NoError(t, err)

	assert.InDelta(t, -4, tl.Value(120*time.Millisecond), 1e-9)
	assert.False(t, tl.Done(599*time.Millisecond))
	assert.True(t, tl.Done(600*time.Millisecond))
	assert.InDelta(t, 0, tl.Value(time.Second), 1e-9)
}

func TestTimelineDelay(t *testing.T) {
	tl, err := NewTimeline([]float64{0, 1}, []float64{-1, 0}, "easeOut", 200*time.Millisecond, false)
	require.NoError(t, err)
	tl.Delay = 100 * time.Millisecond

	assert.Equal(t, -1.0, tl.Value(50*time.Millisecond))
	assert.False(t, tl.Done(250*time.Millisecond))
	assert.True(t, tl.Done(300*time.Millisecond))
}

func TestTimelineRejectsBadConfig(t *testing.T) {
	_, err := NewTimeline([]float64{0, 1}, []float64{0, 1}, "", 0, false)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewTimeline([]float64{0, 1}, []float64{0, 1}, "", -time.Second, true)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewTimeline([]float64{0, 0.5}, []float64{0, 1, 2}, "", time.Second, true)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewTimeline([]float64{0.5, 0.2}, []float64{0, 1}, "", time.Second, true)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewTimeline([]float64{0, 1}, []float64{0, 1}, "wobble", time.Second, true)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEvenTimes(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, EvenTimes(3))
	assert.Equal(t, []float64{0}, EvenTimes(1))
}

func TestOscillator(t *testing.T) {
	o := &Oscillator{Amplitude: 5, Period: 2 * time.Second}
	require.NoError(t, o.Validate())
	assert.InDelta(t, 0, o.Value(0), 1e-9)
	assert.InDelta(t, 5, o.Value(500*time.Millisecond), 1e-9)
	assert.InDelta(t, -5, o.Value(1500*time.Millisecond), 1e-9)
	assert.False(t, o.Done(time.Hour))

	assert.ErrorIs(t, (&Oscillator{Amplitude: 1}).Validate(), ErrInvalidConfig)
}
