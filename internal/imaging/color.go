package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/zonevision/internal/vision"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 = fully transparent, 255 = fully opaque
}

// YUVColor is the pixel in the thresholding color space.
type YUVColor struct {
	Y uint8 `json:"y"`
	U uint8 `json:"u"`
	V uint8 `json:"v"`
}

// HSLColor represents a color in HSL color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// HSVColor represents a color in HSV color space.
type HSVColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	V int `json:"v"` // Value: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"` // "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`
	RGBA RGBAColor `json:"rgba"`
	YUV  YUVColor  `json:"yuv"`
	HSL  HSLColor  `json:"hsl"`
	HSV  HSVColor  `json:"hsv"`
}

// Triple returns the YUV reading in the form a vision.ColorRange tests.
func (y YUVColor) Triple() [3]uint8 {
	return [3]uint8{y.Y, y.U, y.V}
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// The native color is converted to 8-bit components. For 16-bit images,
// values are scaled down by right-shifting 8 bits. The YUV reading uses the
// same conversion as the mask threshold, so it can be compared directly
// against a vision.ColorRange.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, a := img.At(x, y).RGBA()
	r8, g8, b8, a8 := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	yuv := vision.ToYUV(r8, g8, b8)

	c := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}
	hh, hs, hl := c.Hsl()
	vh, vs, vv := c.Hsv()

	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB:  RGBColor{R: r8, G: g8, B: b8},
		RGBA: RGBAColor{R: r8, G: g8, B: b8, A: a8},
		YUV:  YUVColor{Y: yuv[0], U: yuv[1], V: yuv[2]},
		HSL:  HSLColor{H: hue(hh), S: percent(hs), L: percent(hl)},
		HSV:  HSVColor{H: hue(vh), S: percent(vs), V: percent(vv)},
	}, nil
}

// LabeledPoint is a pixel coordinate with an optional descriptive label
// such as "tape" or "floor".
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// LabeledColorResult combines a color sample with its location and label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// SampleColorsMulti samples every point in order. If any point is outside
// the image no partial result is returned.
func SampleColorsMulti(img image.Image, points []LabeledPoint) ([]LabeledColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		color, err := SampleColor(img, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *color,
		})
	}

	return results, nil
}

// hue rounds a hue in degrees into 0-359.
func hue(h float64) int {
	if math.IsNaN(h) {
		return 0
	}
	return int(math.Round(h)) % 360
}

// percent converts a 0-1 component to a rounded percentage.
func percent(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v * 100))
}
