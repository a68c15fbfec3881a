package vision

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// Mask values.
const (
	MaskSet   uint8 = 255
	MaskClear uint8 = 0
)

// ToYUV converts an 8-bit RGB triple to analog YUV scaled to 0-255:
//
//	Y = 0.299 R + 0.587 G + 0.114 B
//	U = 0.492 (B - Y) + 128
//	V = 0.877 (R - Y) + 128
//
// Y is computed in 16.16 fixed point so black and white map exactly to 0
// and 255.
func ToYUV(r, g, b uint8) [3]uint8 {
	y := (19595*int32(r) + 38470*int32(g) + 7471*int32(b) + 1<<15) >> 16
	u := 0.492*float64(int32(b)-y) + 128
	v := 0.877*float64(int32(r)-y) + 128
	return [3]uint8{uint8(y), clampByte(u), clampByte(v)}
}

func clampByte(f float64) uint8 {
	f = math.Round(f)
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

// threshold is the pure-Go YUV range test.
func threshold(frame image.Image, rng ColorRange) *image.Gray {
	bounds := frame.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := mask.Pix[(y-bounds.Min.Y)*mask.Stride:]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := frame.At(x, y).RGBA()
			if rng.Contains(ToYUV(uint8(r>>8), uint8(g>>8), uint8(b>>8))) {
				row[x-bounds.Min.X] = MaskSet
			}
		}
	}
	return mask
}

// boxBlur is the bild box filter. Callers handle radii below 1.
func boxBlur(mask *image.Gray, radius float64) *image.Gray {
	blurred := blur.Box(mask, radius)

	bounds := mask.Bounds()
	out := image.NewGray(bounds)
	bb := blurred.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := blurred.RGBAAt(bb.Min.X+x, bb.Min.Y+y)
			out.Pix[y*out.Stride+x] = c.R
		}
	}
	return out
}

// erode is the separable pure-Go erosion. Callers handle iterations
// below 1.
func erode(mask *image.Gray, iterations int) *image.Gray {
	out := cloneGray(mask)

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	tmp := make([]uint8, w*h)
	for i := 0; i < iterations; i++ {
		// Rows first into tmp, then columns back into out.
		for y := 0; y < h; y++ {
			src := out.Pix[y*out.Stride : y*out.Stride+w]
			dst := tmp[y*w : (y+1)*w]
			minWindow(src, 1, dst, 1, w)
		}
		for x := 0; x < w; x++ {
			minWindow(tmp[x:], w, out.Pix[x:], out.Stride, h)
		}
	}
	return out
}

// minWindow writes to dst[i] the minimum of src[i .. i+ErosionKernelSize-1],
// clipped to n elements. Both slices are walked with their own stride.
func minWindow(src []uint8, srcStride int, dst []uint8, dstStride int, n int) {
	for i := 0; i < n; i++ {
		end := i + ErosionKernelSize
		if end > n {
			end = n
		}
		m := src[i*srcStride]
		for j := i + 1; j < end && m > 0; j++ {
			if v := src[j*srcStride]; v < m {
				m = v
			}
		}
		dst[i*dstStride] = m
	}
}

// Threshold converts frame to YUV and marks every pixel whose three
// channels fall inside rng. The mask has the frame's size with its origin
// at (0,0).
func Threshold(frame image.Image, rng ColorRange) *image.Gray {
	return thresholdMask(frame, rng)
}

// BoxBlur smooths a mask with a normalized box filter of the given radius.
// Radii below 1 return an unmodified copy.
func BoxBlur(mask *image.Gray, radius float64) *image.Gray {
	if radius < 1 {
		return cloneGray(mask)
	}
	return blurMask(mask, radius)
}

// Erode applies the given number of erosions with an ErosionKernelSize
// square element anchored at its top-left corner: each output pixel is the
// minimum over the window [x, x+10] x [y, y+10]. Pixels outside the image
// do not take part in the minimum. Zero or negative iterations return an
// unmodified copy.
func Erode(mask *image.Gray, iterations int) *image.Gray {
	if iterations < 1 {
		return cloneGray(mask)
	}
	return erodeMask(mask, iterations)
}

// BuildMask runs the full mask stage: YUV threshold, optional box blur,
// optional erosion. Blurring happens before erosion so that jagged edges
// are smoothed before they are eaten away.
func BuildMask(frame image.Image, rng ColorRange, blurRadius float64, erosionIterations int) *image.Gray {
	mask := Threshold(frame, rng)
	mask = BoxBlur(mask, blurRadius)
	return Erode(mask, erosionIterations)
}

// MaskToRGBA expands a mask into an opaque grayscale RGBA frame for output.
func MaskToRGBA(mask *image.Gray) *image.RGBA {
	bounds := mask.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := mask.GrayAt(x, y).Y
			out.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func cloneGray(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(bounds)
	w := bounds.Dx()
	for y := 0; y < bounds.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
	return out
}
