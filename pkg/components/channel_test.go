package components

import "testing"

func TestChannelNeutral(t *testing.T) {
	for c := Channel(0); c < ChannelCount; c++ {
		want := 0.0
		if c == ChannelScale || c == ChannelOpacity {
			want = 1
		}
		if got := c.Neutral(); got != want {
			t.Errorf("%s.Neutral() = %v, want %v", c, got, want)
		}
	}
}

func TestParseChannel(t *testing.T) {
	for c := Channel(0); c < ChannelCount; c++ {
		got, ok := ParseChannel(c.String())
		if !ok || got != c {
			t.Errorf("ParseChannel(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseChannel("skew"); ok {
		t.Error("unknown channel should not parse")
	}
	if Channel(42).Valid() {
		t.Error("Channel(42) should be invalid")
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		name string
		want Source
	}{
		{"pointerX", SourcePointerX},
		{"hover", SourceHover},
		{"scroll", SourceScroll},
		{"derived", SourceDerived},
	}
	for _, tt := range tests {
		got, ok := ParseSource(tt.name)
		if !ok || got != tt.want {
			t.Errorf("ParseSource(%q) = %v, %v; want %v", tt.name, got, ok, tt.want)
		}
		if got.String() != tt.name {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
}

func TestPolicyString(t *testing.T) {
	if PolicyEvictOldest.String() != "evictOldest" || PolicySkip.String() != "skip" {
		t.Error("unexpected policy names")
	}
	if EmitAutonomous.String() != "autonomous" {
		t.Error("unexpected mode name")
	}
}
