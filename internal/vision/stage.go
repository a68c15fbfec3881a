package vision

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Stage selects which intermediate artifact a frame emits.
type Stage int32

const (
	StageRaw       Stage = iota // input passed through
	StageMask                   // thresholded and denoised mask
	StageAnnotated              // input with cut-lines, contours and centroids
)

// stages is the advance order. Advancing past the last wraps to the first.
var stages = [...]Stage{StageRaw, StageMask, StageAnnotated}

var stageNames = [...]string{"raw", "mask", "annotated"}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int32(s))
	}
	return stageNames[s]
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	return s >= 0 && int(s) < len(stages)
}

// Next returns the stage that follows s in the cycle.
func (s Stage) Next() Stage {
	return stages[(int(s)+1)%len(stages)]
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", int32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts any name understood by ParseStage.
func (s *Stage) UnmarshalText(b []byte) error {
	st, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStage maps a stage name to a Stage. The tuning-dashboard spellings
// "noop" and "threshold" are accepted for raw and mask.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "raw", "noop":
		return StageRaw, nil
	case "mask", "threshold":
		return StageMask, nil
	case "annotated":
		return StageAnnotated, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", name)
	}
}

// StageController holds the process-wide debug stage. The zero value
// starts at StageRaw; use NewStageController for another initial stage.
type StageController struct {
	cur atomic.Int32
}

// NewStageController returns a controller positioned at initial.
func NewStageController(initial Stage) *StageController {
	c := &StageController{}
	c.cur.Store(int32(initial))
	return c
}

// Current returns the selected stage.
func (c *StageController) Current() Stage {
	return Stage(c.cur.Load())
}

// Advance moves to the next stage in the cycle and returns it. Safe to
// call concurrently with Current and with other Advance calls.
func (c *StageController) Advance() Stage {
	for {
		old := c.cur.Load()
		next := Stage(old).Next()
		if c.cur.CompareAndSwap(old, int32(next)) {
			return next
		}
	}
}
