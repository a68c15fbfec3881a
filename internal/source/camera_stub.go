//go:build !gocv

package source

import (
	"context"
	"errors"
	"image"
)

// ErrCameraUnavailable is returned when no camera backend is compiled in.
var ErrCameraUnavailable = errors.New("camera support not built (rebuild with -tags gocv)")

// Camera is unavailable without the gocv build tag.
type Camera struct{}

// OpenCamera always fails with ErrCameraUnavailable.
func OpenCamera(id, width, height int) (*Camera, error) {
	return nil, ErrCameraUnavailable
}

// Next implements FrameSource.
func (c *Camera) Next(ctx context.Context) (image.Image, error) {
	return nil, ErrCameraUnavailable
}

// Close implements FrameSource.
func (c *Camera) Close() error {
	return nil
}

// Preview is unavailable without the gocv build tag.
type Preview struct{}

// NewPreview always fails with ErrCameraUnavailable.
func NewPreview(title string, onKey func(key int)) (*Preview, error) {
	return nil, ErrCameraUnavailable
}

// WriteFrame implements Sink.
func (p *Preview) WriteFrame(_ int, _ image.Image) error {
	return ErrCameraUnavailable
}

// Close implements Sink cleanup.
func (p *Preview) Close() error {
	return nil
}
