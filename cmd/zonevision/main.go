// Command zonevision runs the zone pipeline over a stream of frames, read
// either from a directory of images or from a camera, and logs every
// change of the published position.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/zonevision/internal/imaging"
	"github.com/ironsheep/zonevision/internal/source"
	"github.com/ironsheep/zonevision/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// options holds the parsed command line.
type options struct {
	dir          string
	camera       int
	out          string
	loop         bool
	advanceEvery int
	preview      bool
	width        int
	height       int
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", "", "Directory of frame images to process in name order")
	flag.IntVar(&opts.camera, "camera", -1, "Camera device id to capture from (requires a gocv build)")
	flag.StringVar(&opts.out, "out", "", "Directory to write the selected stage output of each frame")
	flag.BoolVar(&opts.loop, "loop", false, "Restart from the first file when -dir is exhausted")
	flag.IntVar(&opts.advanceEvery, "advance-every", 0, "Advance the debug stage every N frames (0 = never)")
	flag.BoolVar(&opts.preview, "preview", false, "Show stage output in a window; any key advances the stage, Esc quits")
	flag.IntVar(&opts.width, "width", vision.DefaultStreamWidth, "Stream width")
	flag.IntVar(&opts.height, "height", vision.DefaultStreamHeight, "Stream height")
	showVersion := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("zonevision %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if (opts.dir == "") == (opts.camera < 0) {
		fmt.Fprintln(os.Stderr, "exactly one of -dir or -camera is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts)
	stop()
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// run processes frames until the source is exhausted, the preview is
// closed or ctx is canceled. Every opened resource is released before it
// returns.
func run(ctx context.Context, opts options) error {
	cfg, err := vision.ConfigFromEnv(nil)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	pipeline, err := vision.New(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	src, err := openSource(opts.dir, opts.camera, opts.width, opts.height, opts.loop)
	if err != nil {
		return fmt.Errorf("failed to open frame source: %w", err)
	}
	defer src.Close()

	var sinks source.MultiSink
	if opts.out != "" {
		sinks = append(sinks, source.DirSink{Dir: opts.out})
	}
	if opts.preview {
		win, err := source.NewPreview("zonevision", func(int) {
			log.Printf("stage: %s", pipeline.AdvanceStage())
		})
		if err != nil {
			return fmt.Errorf("failed to open preview: %w", err)
		}
		defer win.Close()
		sinks = append(sinks, win)
	}
	var sink source.Sink
	if len(sinks) > 0 {
		sink = sinks
	}

	n, err := source.Run(ctx, src, newReporter(pipeline, opts.advanceEvery), sink)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stopped after %d frames: %w", n, err)
	}
	log.Printf("Processed %d frames, final position %s", n, pipeline.Position())
	return nil
}

func openSource(dir string, camera, width, height int, loop bool) (source.FrameSource, error) {
	if dir != "" {
		return source.NewDirSource(dir, imaging.NewFrameCache(width, height), loop)
	}
	return source.OpenCamera(camera, width, height)
}

// reporter wraps the pipeline, logging position changes and cycling the
// debug stage on a fixed frame cadence.
type reporter struct {
	pipeline     *vision.Pipeline
	advanceEvery int
	frames       int
	last         vision.Position
}

func newReporter(p *vision.Pipeline, advanceEvery int) *reporter {
	return &reporter{pipeline: p, advanceEvery: advanceEvery, last: p.Position()}
}

func (r *reporter) ProcessFrame(frame image.Image) image.Image {
	out := r.pipeline.ProcessFrame(frame)
	r.frames++

	if pos := r.pipeline.Position(); pos != r.last {
		log.Printf("frame %d: position %s -> %s", r.frames, r.last, pos)
		r.last = pos
	}
	if r.advanceEvery > 0 && r.frames%r.advanceEvery == 0 {
		log.Printf("frame %d: stage %s", r.frames, r.pipeline.AdvanceStage())
	}
	return out
}
