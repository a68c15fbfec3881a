package vision

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig should be valid: %v", err)
	}
	if cfg.Threshold.Min != (Scalar{100, 0, 100}) || cfg.Threshold.Max != (Scalar{255, 100, 255}) {
		t.Errorf("Threshold: got %+v", cfg.Threshold)
	}
	if cfg.BlurRadius != 0 {
		t.Errorf("BlurRadius: got %v, want 0", cfg.BlurRadius)
	}
	if cfg.ErosionIterations != 3 {
		t.Errorf("ErosionIterations: got %d, want 3", cfg.ErosionIterations)
	}
	if cfg.Boundaries != (ZoneBoundaries{Outer: 0.8, Inner: 0.45}) {
		t.Errorf("Boundaries: got %+v", cfg.Boundaries)
	}
	if cfg.InitialStage != StageAnnotated {
		t.Errorf("InitialStage: got %v, want annotated", cfg.InitialStage)
	}
	if cfg.HoldOnEmpty {
		t.Error("HoldOnEmpty should default to false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"lower above upper", func(c *Config) { c.Threshold.Min[1] = 200 }, "threshold"},
		{"outer above one", func(c *Config) { c.Boundaries.Outer = 1.2 }, "outer"},
		{"inner negative", func(c *Config) { c.Boundaries.Inner = -0.1 }, "inner"},
		{"bad stage", func(c *Config) { c.InitialStage = 7 }, "stage"},
		{"bad palette", func(c *Config) { c.Palette.Marker = "blue" }, "palette"},
		{"inverted boundaries allowed", func(c *Config) { c.Boundaries = ZoneBoundaries{Outer: 0.2, Inner: 0.9} }, ""},
		{"degenerate denoise allowed", func(c *Config) { c.BlurRadius, c.ErosionIterations = 0, 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestColorRange_Contains(t *testing.T) {
	r := ColorRange{Min: Scalar{10, 20, 30}, Max: Scalar{10, 40, 60}}

	tests := []struct {
		v    [3]uint8
		want bool
	}{
		{[3]uint8{10, 20, 30}, true},
		{[3]uint8{10, 40, 60}, true},
		{[3]uint8{11, 30, 40}, false},
		{[3]uint8{10, 41, 40}, false},
		{[3]uint8{10, 30, 29}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v): got %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := ConfigFromEnv(envLookup(map[string]string{
		EnvThresholdMin:      "90, 10, 110",
		EnvThresholdMax:      "250,90,240",
		EnvBlurRadius:        "2.5",
		EnvErosionIterations: "1",
		EnvOuterBoundary:     "0.7",
		EnvInnerBoundary:     "0.3",
		EnvInitialStage:      "threshold",
		EnvHoldOnEmpty:       "true",
	}))
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}

	want := DefaultConfig()
	want.Threshold = ColorRange{Min: Scalar{90, 10, 110}, Max: Scalar{250, 90, 240}}
	want.BlurRadius = 2.5
	want.ErosionIterations = 1
	want.Boundaries = ZoneBoundaries{Outer: 0.7, Inner: 0.3}
	want.InitialStage = StageMask
	want.HoldOnEmpty = true

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFromEnv_NoOverrides(t *testing.T) {
	cfg, err := ConfigFromEnv(envLookup(nil))
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"short scalar", map[string]string{EnvThresholdMin: "1,2"}},
		{"bad scalar value", map[string]string{EnvThresholdMax: "1,x,3"}},
		{"bad blur", map[string]string{EnvBlurRadius: "wide"}},
		{"bad erosion", map[string]string{EnvErosionIterations: "3.5"}},
		{"bad outer", map[string]string{EnvOuterBoundary: ""}},
		{"out of range inner", map[string]string{EnvInnerBoundary: "1.5"}},
		{"bad stage", map[string]string{EnvInitialStage: "edges"}},
		{"bad bool", map[string]string{EnvHoldOnEmpty: "sometimes"}},
		{"inverted range", map[string]string{EnvThresholdMin: "200,0,0", EnvThresholdMax: "100,255,255"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ConfigFromEnv(envLookup(tt.env)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
