package vision

import (
	"fmt"
	"strings"
)

// Position is the inferred location of the target object.
type Position int32

const (
	PositionUnknown Position = iota
	PositionLeft
	PositionCenter
	PositionRight
)

func (p Position) String() string {
	switch p {
	case PositionLeft:
		return "LEFT"
	case PositionCenter:
		return "CENTER"
	case PositionRight:
		return "RIGHT"
	case PositionUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("Position(%d)", int32(p))
	}
}

// MarshalText encodes the position by name.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts any name understood by ParsePosition.
func (p *Position) UnmarshalText(b []byte) error {
	pos, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// ParsePosition maps LEFT, CENTER, RIGHT or UNKNOWN, in any case, to a
// Position.
func ParsePosition(name string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "LEFT":
		return PositionLeft, nil
	case "CENTER":
		return PositionCenter, nil
	case "RIGHT":
		return PositionRight, nil
	case "UNKNOWN":
		return PositionUnknown, nil
	default:
		return 0, fmt.Errorf("unknown position %q", name)
	}
}

// Resolve maps zone occupancy to a position. The target does not match
// the threshold color, so the first empty zone is where it sits. The
// checks run outer, middle, inner; all zones occupied is UNKNOWN. Note
// that an empty frame resolves to LEFT.
func Resolve(occ ZoneOccupancy) Position {
	switch {
	case !occ.OuterHit:
		return PositionLeft
	case !occ.MiddleHit:
		return PositionCenter
	case !occ.InnerHit:
		return PositionRight
	default:
		return PositionUnknown
	}
}
