package vision

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

// Processor consumes a frame and produces the frame to display.
type Processor interface {
	ProcessFrame(frame image.Image) image.Image
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(frame image.Image) image.Image

// ProcessFrame calls f(frame).
func (f ProcessorFunc) ProcessFrame(frame image.Image) image.Image {
	return f(frame)
}

// FrameResult holds every intermediate artifact of one processed frame.
type FrameResult struct {
	Width     int
	Height    int
	Mask      *image.Gray
	Contours  []Contour
	Votes     []Vote
	Occupancy ZoneOccupancy
	Position  Position
	Annotated *image.NRGBA
}

// Pipeline is the per-frame orchestrator. Configuration is fixed at
// construction; the debug stage and the latest position are the only
// mutable state and are safe to access from other goroutines.
type Pipeline struct {
	cfg     Config
	palette palette
	stage   *StageController

	position atomic.Int32
	frames   atomic.Uint64
}

// New validates cfg and returns a pipeline positioned at cfg.InitialStage
// with the position UNKNOWN.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	pal, err := cfg.Palette.resolve()
	if err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}
	p := &Pipeline{
		cfg:     cfg,
		palette: pal,
		stage:   NewStageController(cfg.InitialStage),
	}
	p.position.Store(int32(PositionUnknown))
	return p, nil
}

// Config returns the session configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Position returns the most recently published position. It is UNKNOWN
// until the first frame completes and may lag a frame in progress.
func (p *Pipeline) Position() Position {
	return Position(p.position.Load())
}

// Stage returns the currently selected debug stage.
func (p *Pipeline) Stage() Stage {
	return p.stage.Current()
}

// AdvanceStage moves the debug stage to the next one in the cycle.
func (p *Pipeline) AdvanceStage() Stage {
	return p.stage.Advance()
}

// FramesProcessed returns how many frames have completed.
func (p *Pipeline) FramesProcessed() uint64 {
	return p.frames.Load()
}

// Analyze runs the full pipeline on frame, publishes the resulting
// position and returns every intermediate artifact.
func (p *Pipeline) Analyze(frame image.Image) *FrameResult {
	bounds := frame.Bounds()
	height := float64(bounds.Dy())

	mask := BuildMask(frame, p.cfg.Threshold, p.cfg.BlurRadius, p.cfg.ErosionIterations)
	contours := ExtractContours(mask)
	occ, votes := classify(contours, height, p.cfg.Boundaries)
	pos := Resolve(occ)

	if !(p.cfg.HoldOnEmpty && len(votes) == 0) {
		p.position.Store(int32(pos))
	}
	p.frames.Add(1)

	return &FrameResult{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Mask:      mask,
		Contours:  contours,
		Votes:     votes,
		Occupancy: occ,
		Position:  pos,
		Annotated: annotate(frame, contours, votes, p.cfg.Boundaries, p.palette),
	}
}

// Output picks the artifact for stage from a processed frame. Every
// choice has the frame's dimensions and is owned by the caller.
func (r *FrameResult) Output(frame image.Image, stage Stage) image.Image {
	switch stage {
	case StageRaw:
		return imaging.Clone(frame)
	case StageMask:
		return MaskToRGBA(r.Mask)
	default:
		return r.Annotated
	}
}

// ProcessFrame runs the pipeline on frame and returns the artifact chosen
// by the current debug stage. The stage is read once, after the position
// has been published.
func (p *Pipeline) ProcessFrame(frame image.Image) image.Image {
	res := p.Analyze(frame)
	return res.Output(frame, p.stage.Current())
}
