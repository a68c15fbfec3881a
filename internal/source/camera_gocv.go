//go:build gocv

package source

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrCameraUnavailable is returned when no camera backend is compiled in.
var ErrCameraUnavailable = errors.New("camera support not built (rebuild with -tags gocv)")

const keyEscape = 27

// Camera reads frames from a video capture device.
type Camera struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// OpenCamera opens capture device id and requests width x height frames.
// The device may deliver another size; the pipeline handles any size.
func OpenCamera(id, width, height int) (*Camera, error) {
	capture, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", id, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d is not opened", id)
	}
	if width > 0 && height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Camera{capture: capture, mat: gocv.NewMat()}, nil
}

// Next blocks until the device delivers a frame.
func (c *Camera) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := c.capture.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, errors.New("camera returned no frame")
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Close releases the device.
func (c *Camera) Close() error {
	var errs []error
	if err := c.mat.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.capture.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close video capture: %w", err))
	}
	return errors.Join(errs...)
}

// Preview shows every frame in a window. Any key press other than Escape
// is reported to onKey; Escape or closing the window stops the run.
type Preview struct {
	window *gocv.Window
	onKey  func(key int)
}

// NewPreview opens a window titled title.
func NewPreview(title string, onKey func(key int)) (*Preview, error) {
	return &Preview{window: gocv.NewWindow(title), onKey: onKey}, nil
}

// WriteFrame implements Sink.
func (p *Preview) WriteFrame(_ int, frame image.Image) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return fmt.Errorf("failed to convert frame for display: %w", err)
	}
	defer mat.Close()

	p.window.IMShow(mat)
	key := p.window.WaitKey(1)
	switch {
	case key == keyEscape || !p.window.IsOpen():
		return ErrStopped
	case key >= 0 && p.onKey != nil:
		p.onKey(key)
	}
	return nil
}

// Close destroys the window.
func (p *Preview) Close() error {
	return p.window.Close()
}
