// Package source feeds frames to a vision.Processor and hands the results
// to a sink.
//
// A FrameSource is either a directory of snapshots (DirSource) or a live
// camera (Camera, available when built with the gocv tag). Run pulls frames
// one at a time and delivers them to a single processor, so frames are
// never processed concurrently.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/ironsheep/zonevision/internal/vision"
)

// ErrStopped is returned by a Sink to end Run without an error, for
// example when the preview window is closed.
var ErrStopped = errors.New("source: stopped")

// FrameSource produces frames in order. Next returns io.EOF once the
// source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// Sink receives each processed frame together with its sequence number.
type Sink interface {
	WriteFrame(seq int, frame image.Image) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(seq int, frame image.Image) error

// WriteFrame calls f(seq, frame).
func (f SinkFunc) WriteFrame(seq int, frame image.Image) error {
	return f(seq, frame)
}

// MultiSink writes every frame to each sink in order, stopping at the
// first error.
type MultiSink []Sink

// WriteFrame implements Sink.
func (m MultiSink) WriteFrame(seq int, frame image.Image) error {
	for _, s := range m {
		if err := s.WriteFrame(seq, frame); err != nil {
			return err
		}
	}
	return nil
}

// Run pulls frames from src until it is exhausted, ctx is done or sink
// returns ErrStopped. Each frame goes through proc and the result is
// passed to sink, which may be nil. It returns the number of frames
// processed.
func Run(ctx context.Context, src FrameSource, proc vision.Processor, sink Sink) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("failed to read frame %d: %w", n, err)
		}

		out := proc.ProcessFrame(frame)
		seq := n
		n++

		if sink == nil {
			continue
		}
		if err := sink.WriteFrame(seq, out); err != nil {
			if errors.Is(err, ErrStopped) {
				return n, nil
			}
			return n, fmt.Errorf("failed to write frame %d: %w", seq, err)
		}
	}
}
