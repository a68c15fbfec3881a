package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/zonevision/internal/imaging"
)

// DirSource replays the image files of a directory in name order.
type DirSource struct {
	cache *imaging.FrameCache
	paths []string
	next  int
	loop  bool
}

// NewDirSource lists the decodable image files in dir. Frames are loaded
// through cache, which decides the output resolution. With loop set the
// source starts over after the last file instead of returning io.EOF.
func NewDirSource(dir string, cache *imaging.FrameCache, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsFrameFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	sort.Strings(paths)

	return &DirSource{cache: cache, paths: paths, loop: loop}, nil
}

// Paths returns the files the source replays, in order.
func (d *DirSource) Paths() []string {
	return append([]string(nil), d.paths...)
}

// Next loads the next file. Each frame is evicted from the cache once it
// has been read so a long replay does not grow memory.
func (d *DirSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.next == len(d.paths) {
		if !d.loop {
			return nil, io.EOF
		}
		d.next = 0
	}

	path := d.paths[d.next]
	d.next++

	img, err := d.cache.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	d.cache.Evict(path)
	return img, nil
}

// Close implements FrameSource.
func (d *DirSource) Close() error {
	d.cache.Clear()
	return nil
}

// DirSink saves every frame as <dir>/<prefix>-NNNNNN.png.
type DirSink struct {
	Dir    string
	Prefix string
}

// WriteFrame implements Sink.
func (s DirSink) WriteFrame(seq int, frame image.Image) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "frame"
	}
	return imaging.SaveFrame(frame, filepath.Join(s.Dir, fmt.Sprintf("%s-%06d.png", prefix, seq)))
}
