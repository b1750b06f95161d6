package particle

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/decker502/studyjam/pkg/utils"
)

// TestParseValue_FixedValue tests parsing of fixed value format
func TestParseValue_FixedValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMin float64
		wantMax float64
	}{
		{"Integer", "1500", 1500, 1500},
		{"Float", "3.14", 3.14, 3.14},
		{"Negative", "-10.5", -10.5, -10.5},
		{"Zero", "0", 0, 0},
		{"Single bracket", "[42]", 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.input)
			if err != nil {
				t.Fatalf("ParseValue(%q) error: %v", tt.input, err)
			}
			if v.Min != tt.wantMin || v.Max != tt.wantMax {
				t.Errorf("ParseValue(%q) = [%v %v], want [%v %v]", tt.input, v.Min, v.Max, tt.wantMin, tt.wantMax)
			}
			if v.Keyframes != nil {
				t.Errorf("ParseValue(%q) keyframes = %v, want nil", tt.input, v.Keyframes)
			}
			if v.IsRange() {
				t.Errorf("ParseValue(%q) should not be a range", tt.input)
			}
		})
	}
}

// TestParseValue_Range tests parsing of range format
func TestParseValue_Range(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMin float64
		wantMax float64
	}{
		{"Float range", "[0.3 0.7]", 0.3, 0.7},
		{"Integer range", "[2000 3500]", 2000, 3500},
		{"Negative range", "[-5 -2]", -5, -2},
		{"Mixed range", "[-0.4 0.4]", -0.4, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.input)
			if err != nil {
				t.Fatalf("ParseValue(%q) error: %v", tt.input, err)
			}
			if v.Min != tt.wantMin || v.Max != tt.wantMax {
				t.Errorf("ParseValue(%q) = [%v %v], want [%v %v]", tt.input, v.Min, v.Max, tt.wantMin, tt.wantMax)
			}
			if !v.IsRange() {
				t.Errorf("ParseValue(%q) should be a range", tt.input)
			}
		})
	}
}

// TestParseValue_DoubleRange 双范围格式：起止值各自随机
func TestParseValue_DoubleRange(t *testing.T) {
	v, err := ParseValue("[.4 .6] [.8 1.2]")
	if err != nil {
		t.Fatalf("ParseValue error: %v", err)
	}
	r := utils.NewSeededRandom(3)
	for i := 0; i < 50; i++ {
		kf := v.SampleCurve(r)
		if len(kf) != 2 {
			t.Fatalf("expected 2 keyframes, got %d", len(kf))
		}
		if kf[0].Value < .4 || kf[0].Value > .6 {
			t.Errorf("start %v out of [.4 .6]", kf[0].Value)
		}
		if kf[1].Value < .8 || kf[1].Value > 1.2 {
			t.Errorf("end %v out of [.8 1.2]", kf[1].Value)
		}
	}
}

// TestParseValue_Keyframes tests parsing of keyframe format
func TestParseValue_Keyframes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantFirst Keyframe
		wantLast  Keyframe
	}{
		{
			name:      "Float keyframes",
			input:     "0,0 0.25,-10 0.5,0 0.75,10 1,0",
			wantCount: 5,
			wantFirst: Keyframe{Time: 0, Value: 0},
			wantLast:  Keyframe{Time: 1, Value: 0},
		},
		{
			name:      "Two keyframes",
			input:     "0,1 1,0",
			wantCount: 2,
			wantFirst: Keyframe{Time: 0, Value: 1},
			wantLast:  Keyframe{Time: 1, Value: 0},
		},
		{
			name:      "Percent time",
			input:     "0,1 50,0.5 100,0",
			wantCount: 3,
			wantFirst: Keyframe{Time: 0, Value: 1},
			wantLast:  Keyframe{Time: 1, Value: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.input)
			if err != nil {
				t.Fatalf("ParseValue(%q) error: %v", tt.input, err)
			}
			if len(v.Keyframes) != tt.wantCount {
				t.Fatalf("ParseValue(%q) keyframe count = %d, want %d", tt.input, len(v.Keyframes), tt.wantCount)
			}
			if v.Keyframes[0] != tt.wantFirst {
				t.Errorf("ParseValue(%q) first keyframe = %v, want %v", tt.input, v.Keyframes[0], tt.wantFirst)
			}
			if v.Keyframes[len(v.Keyframes)-1] != tt.wantLast {
				t.Errorf("ParseValue(%q) last keyframe = %v, want %v", tt.input, v.Keyframes[len(v.Keyframes)-1], tt.wantLast)
			}
		})
	}
}

// TestParseValue_Interpolation tests parsing of interpolation keywords
func TestParseValue_Interpolation(t *testing.T) {
	tests := []struct {
		input      string
		wantInterp string
	}{
		{"Linear 0,0 1,10", "Linear"},
		{"EaseIn 0,0 1,100", "EaseIn"},
		{"EaseInOut 0,0 0.5,1 1,0", "EaseInOut"},
		{"FastInOutWeak 0,1 1,0", "FastInOutWeak"},
	}

	for _, tt := range tests {
		t.Run(tt.wantInterp, func(t *testing.T) {
			v, err := ParseValue(tt.input)
			if err != nil {
				t.Fatalf("ParseValue(%q) error: %v", tt.input, err)
			}
			if v.Interpolation != tt.wantInterp {
				t.Errorf("ParseValue(%q) interpolation = %q, want %q", tt.input, v.Interpolation, tt.wantInterp)
			}
		})
	}
}

// TestParseValue_Errors 格式错误必须报错，不能静默变成 0
func TestParseValue_Errors(t *testing.T) {
	inputs := []string{
		"abc",
		"[10",
		"0,",
		"[1 2 3]",
		"[5 1]",
		"0,1 0.5,2 0.25,3",
		"Linear",
	}
	for _, in := range inputs {
		if _, err := ParseValue(in); err == nil {
			t.Errorf("ParseValue(%q) expected error", in)
		}
	}

	v, err := ParseValue("   ")
	if err != nil || !v.IsZero() {
		t.Errorf("blank input should be the zero value, got %+v, %v", v, err)
	}
}

func TestValueString(t *testing.T) {
	for _, in := range []string{"12", "[0.3 0.7]", "[0.4 0.6] [0.8 1.2]", "EaseOut 0,1 1,0"} {
		v, err := ParseValue(in)
		if err != nil {
			t.Fatalf("ParseValue(%q) error: %v", in, err)
		}
		if got := v.String(); got != in {
			t.Errorf("String() = %q, want %q", got, in)
		}
	}
}

func TestValueYAML(t *testing.T) {
	var doc struct {
		Size  Value `yaml:"size"`
		Life  Value `yaml:"life"`
		Alpha Value `yaml:"alpha"`
	}
	src := "size: 20\nlife: \"[2000 3500]\"\nalpha: \"EaseOut 0,0.7 1,0\"\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal error: %v", err)
	}
	if doc.Size.Min != 20 || doc.Size.IsRange() {
		t.Errorf("size = %+v", doc.Size)
	}
	if doc.Life.Min != 2000 || doc.Life.Max != 3500 {
		t.Errorf("life = %+v", doc.Life)
	}
	if len(doc.Alpha.Keyframes) != 2 || doc.Alpha.Interpolation != "EaseOut" {
		t.Errorf("alpha = %+v", doc.Alpha)
	}

	if err := yaml.Unmarshal([]byte("size: \"[1 x]\"\n"), &doc); err == nil {
		t.Error("malformed range should fail to unmarshal")
	}
}

func TestValueSample(t *testing.T) {
	r := utils.NewSeededRandom(11)
	v := Range(20, 50)
	for i := 0; i < 100; i++ {
		got := v.Sample(r)
		if got < 20 || got > 50 {
			t.Fatalf("Sample() = %v out of range", got)
		}
	}
	if got := Fixed(7).Sample(r); got != 7 {
		t.Errorf("Fixed(7).Sample() = %v", got)
	}
}

// TestEvaluateKeyframes_Linear tests linear interpolation
func TestEvaluateKeyframes_Linear(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Value: 0},
		{Time: 1, Value: 100},
	}

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"Start", 0.0, 0},
		{"Quarter", 0.25, 25},
		{"Half", 0.5, 50},
		{"ThreeQuarter", 0.75, 75},
		{"End", 1.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateKeyframes(keyframes, tt.t, "Linear")
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("EvaluateKeyframes(t=%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

// TestEvaluateKeyframes_MultipleSegments tests interpolation across multiple keyframes
func TestEvaluateKeyframes_MultipleSegments(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Value: 0},
		{Time: 0.5, Value: 50},
		{Time: 1, Value: 0},
	}

	tests := []struct {
		t    float64
		want float64
	}{
		{0.0, 0},
		{0.25, 25},
		{0.5, 50},
		{0.75, 25},
		{1.0, 0},
	}

	for _, tt := range tests {
		got := EvaluateKeyframes(keyframes, tt.t, "")
		if math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("EvaluateKeyframes(t=%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

// TestEvaluateKeyframes_EdgeCases tests edge cases
func TestEvaluateKeyframes_EdgeCases(t *testing.T) {
	t.Run("Empty keyframes", func(t *testing.T) {
		if got := EvaluateKeyframes(nil, 0.5, "Linear"); got != 0 {
			t.Errorf("EvaluateKeyframes(empty) = %v, want 0", got)
		}
	})

	t.Run("Single keyframe", func(t *testing.T) {
		keyframes := []Keyframe{{Time: 0, Value: 42}}
		if got := EvaluateKeyframes(keyframes, 0.5, "Linear"); got != 42 {
			t.Errorf("EvaluateKeyframes(single) = %v, want 42", got)
		}
	})

	t.Run("Out of bounds", func(t *testing.T) {
		keyframes := []Keyframe{{Time: 0, Value: 0}, {Time: 1, Value: 100}}
		if got := EvaluateKeyframes(keyframes, -0.5, "Linear"); got != 0 {
			t.Errorf("EvaluateKeyframes(t=-0.5) = %v, want 0 (clamped)", got)
		}
		if got := EvaluateKeyframes(keyframes, 1.5, "Linear"); got != 100 {
			t.Errorf("EvaluateKeyframes(t=1.5) = %v, want 100 (clamped)", got)
		}
	})

	t.Run("Zero-width segment jumps", func(t *testing.T) {
		keyframes := []Keyframe{{Time: 0, Value: 0}, {Time: 0.5, Value: 1}, {Time: 0.5, Value: 5}, {Time: 1, Value: 5}}
		if got := EvaluateKeyframes(keyframes, 0.75, ""); got != 5 {
			t.Errorf("EvaluateKeyframes(t=0.75) = %v, want 5", got)
		}
	})
}

// TestEvaluateKeyframes_Interpolations tests different interpolation modes
func TestEvaluateKeyframes_Interpolations(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Value: 0},
		{Time: 1, Value: 100},
	}

	tests := []struct {
		interp string
		want   float64
	}{
		{"EaseIn", 25},   // 0.5² * 100
		{"EaseOut", 75},  // (1 - 0.5²) * 100
		{"EaseInOut", 50},
		{"FastInOutWeak", 50},
		{"easeOutCubic", 87.5},
		{"UnknownMode", 50}, // linear fallback
	}
	for _, tt := range tests {
		t.Run(tt.interp, func(t *testing.T) {
			got := EvaluateKeyframes(keyframes, 0.5, tt.interp)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("EvaluateKeyframes(%s, t=0.5) = %v, want %v", tt.interp, got, tt.want)
			}
		})
	}
}
