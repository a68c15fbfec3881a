//go:build gocv

package vision

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// thresholdMask runs the YUV conversion and range test in OpenCV.
// ImageToMatRGB lays pixels out as BGR, hence ColorBGRToYUV.
func thresholdMask(frame image.Image, rng ColorRange) *image.Gray {
	src, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return threshold(frame, rng)
	}
	defer src.Close()

	yuv := gocv.NewMat()
	defer yuv.Close()
	gocv.CvtColor(src, &yuv, gocv.ColorBGRToYUV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(yuv, rng.Min.scalar(), rng.Max.scalar(), &mask)

	return matToGray(mask)
}

func blurMask(mask *image.Gray, radius float64) *image.Gray {
	src, err := grayToMat(mask)
	if err != nil {
		return boxBlur(mask, radius)
	}
	defer src.Close()

	k := int(math.Ceil(2*radius + 1))
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Blur(src, &dst, image.Pt(k, k))

	return matToGray(dst)
}

func erodeMask(mask *image.Gray, iterations int) *image.Gray {
	src, err := grayToMat(mask)
	if err != nil {
		return erode(mask, iterations)
	}
	defer src.Close()

	kernel := anchoredKernel()
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	src.CopyTo(&dst)
	for i := 0; i < iterations; i++ {
		gocv.Erode(dst, &dst, kernel)
	}
	return matToGray(dst)
}

// anchoredKernel returns a (2n-1)-square element whose bottom-right n x n
// quadrant is a MorphRect of side n. With OpenCV's default center anchor
// this is the n x n rectangle anchored at its top-left corner. The default
// erosion border is the type's maximum, so pixels outside the image never
// win the minimum.
func anchoredKernel() gocv.Mat {
	n := ErosionKernelSize
	kernel := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2*n-1, 2*n-1, gocv.MatTypeCV8U)

	rect := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(n, n))
	defer rect.Close()

	quadrant := kernel.Region(image.Rect(n-1, n-1, 2*n-1, 2*n-1))
	defer quadrant.Close()
	rect.CopyTo(&quadrant)

	return kernel
}

func (s Scalar) scalar() gocv.Scalar {
	return gocv.NewScalar(s[0], s[1], s[2], 0)
}

// grayToMat copies mask into a single-channel 8-bit Mat.
func grayToMat(mask *image.Gray) (gocv.Mat, error) {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(buf[y*w:(y+1)*w], mask.Pix[y*mask.Stride:y*mask.Stride+w])
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
}

// matToGray copies a single-channel 8-bit Mat into a mask at (0,0).
func matToGray(m gocv.Mat) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	if b := m.ToBytes(); len(b) == len(out.Pix) {
		copy(out.Pix, b)
	}
	return out
}
