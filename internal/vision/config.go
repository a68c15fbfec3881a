package vision

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Default stream resolution requested from the camera.
const (
	DefaultStreamWidth  = 320
	DefaultStreamHeight = 240
)

// ErosionKernelSize is the side length of the square erosion element.
const ErosionKernelSize = 11

// Scalar is a triple of channel values in the thresholding color space
// (Y, U, V), each in 0-255.
type Scalar [3]float64

// ColorRange is an inclusive per-channel threshold window.
type ColorRange struct {
	Min Scalar `json:"min"`
	Max Scalar `json:"max"`
}

// Contains reports whether every channel of v lies inside the window.
func (r ColorRange) Contains(v [3]uint8) bool {
	for i := 0; i < 3; i++ {
		c := float64(v[i])
		if c < r.Min[i] || c > r.Max[i] {
			return false
		}
	}
	return true
}

// Validate checks that each lower bound is not above its upper bound.
func (r ColorRange) Validate() error {
	for i := 0; i < 3; i++ {
		if r.Min[i] > r.Max[i] {
			return fmt.Errorf("channel %d: lower bound %.1f above upper bound %.1f", i, r.Min[i], r.Max[i])
		}
	}
	return nil
}

// ZoneBoundaries holds the two cut-lines as fractions of frame height.
//
// No ordering between Outer and Inner is enforced. With the default
// values (0.8, 0.45) the outer band is the bottom of the frame and the
// inner band is the top.
type ZoneBoundaries struct {
	Outer float64 `json:"outer"`
	Inner float64 `json:"inner"`
}

// Limits returns the cut-line rows for a frame of the given height.
func (b ZoneBoundaries) Limits(height float64) (outerLim, innerLim float64) {
	return height * b.Outer, height * b.Inner
}

// Palette holds the annotation colors as hex strings ("#RRGGBB").
type Palette struct {
	OuterLine string `json:"outer_line"`
	InnerLine string `json:"inner_line"`
	Contour   string `json:"contour"`
	Marker    string `json:"marker"`
}

// Config is the per-session parameter set of the pipeline.
type Config struct {
	Threshold         ColorRange     `json:"threshold"`
	BlurRadius        float64        `json:"blur_radius"`
	ErosionIterations int            `json:"erosion_iterations"`
	Boundaries        ZoneBoundaries `json:"boundaries"`
	InitialStage      Stage          `json:"initial_stage"`

	// HoldOnEmpty keeps the previously published Position when a frame
	// yields no contours instead of publishing the resolver's verdict.
	HoldOnEmpty bool `json:"hold_on_empty"`

	Palette Palette `json:"palette"`
}

// DefaultConfig returns the tuning the classifier was calibrated with.
func DefaultConfig() Config {
	return Config{
		Threshold: ColorRange{
			Min: Scalar{100, 0, 100},
			Max: Scalar{255, 100, 255},
		},
		BlurRadius:        0,
		ErosionIterations: 3,
		Boundaries: ZoneBoundaries{
			Outer: 0.8,
			Inner: 0.45,
		},
		InitialStage: StageAnnotated,
		Palette: Palette{
			OuterLine: "#FFFFFF",
			InnerLine: "#FF0000",
			Contour:   "#00FF00",
			Marker:    "#0000FF",
		},
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	if err := c.Threshold.Validate(); err != nil {
		return fmt.Errorf("invalid threshold: %w", err)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"outer", c.Boundaries.Outer}, {"inner", c.Boundaries.Inner}} {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("invalid %s boundary %.3f: must be within [0,1]", f.name, f.v)
		}
	}
	if !c.InitialStage.Valid() {
		return fmt.Errorf("invalid initial stage %d", c.InitialStage)
	}
	if _, err := c.Palette.resolve(); err != nil {
		return fmt.Errorf("invalid palette: %w", err)
	}
	return nil
}

// palette is the parsed form of Palette.
type palette struct {
	outerLine, innerLine, contour, marker color.RGBA
}

func (p Palette) resolve() (palette, error) {
	var out palette
	for _, f := range []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"outer_line", p.OuterLine, &out.outerLine},
		{"inner_line", p.InnerLine, &out.innerLine},
		{"contour", p.Contour, &out.contour},
		{"marker", p.Marker, &out.marker},
	} {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return palette{}, fmt.Errorf("%s %q: %w", f.name, f.hex, err)
		}
		r, g, b := c.RGB255()
		*f.dst = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out, nil
}

// Environment variables read by ConfigFromEnv.
const (
	EnvThresholdMin      = "ZONEVISION_THRESHOLD_MIN" // "y,u,v"
	EnvThresholdMax      = "ZONEVISION_THRESHOLD_MAX" // "y,u,v"
	EnvBlurRadius        = "ZONEVISION_BLUR_RADIUS"
	EnvErosionIterations = "ZONEVISION_EROSION_ITERATIONS"
	EnvOuterBoundary     = "ZONEVISION_OUTER_BOUNDARY"
	EnvInnerBoundary     = "ZONEVISION_INNER_BOUNDARY"
	EnvInitialStage      = "ZONEVISION_STAGE"
	EnvHoldOnEmpty       = "ZONEVISION_HOLD_ON_EMPTY"
)

// ConfigFromEnv starts from DefaultConfig and applies any ZONEVISION_*
// overrides found through lookup. Pass os.LookupEnv for the process
// environment.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := DefaultConfig()

	if v, ok := lookup(EnvThresholdMin); ok {
		s, err := parseScalar(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvThresholdMin, err)
		}
		cfg.Threshold.Min = s
	}
	if v, ok := lookup(EnvThresholdMax); ok {
		s, err := parseScalar(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvThresholdMax, err)
		}
		cfg.Threshold.Max = s
	}
	if v, ok := lookup(EnvBlurRadius); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvBlurRadius, err)
		}
		cfg.BlurRadius = f
	}
	if v, ok := lookup(EnvErosionIterations); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvErosionIterations, err)
		}
		cfg.ErosionIterations = n
	}
	if v, ok := lookup(EnvOuterBoundary); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvOuterBoundary, err)
		}
		cfg.Boundaries.Outer = f
	}
	if v, ok := lookup(EnvInnerBoundary); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvInnerBoundary, err)
		}
		cfg.Boundaries.Inner = f
	}
	if v, ok := lookup(EnvInitialStage); ok {
		st, err := ParseStage(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvInitialStage, err)
		}
		cfg.InitialStage = st
	}
	if v, ok := lookup(EnvHoldOnEmpty); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvHoldOnEmpty, err)
		}
		cfg.HoldOnEmpty = b
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseScalar parses "a,b,c" into a Scalar.
func parseScalar(s string) (Scalar, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Scalar{}, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}
	var out Scalar
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Scalar{}, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
