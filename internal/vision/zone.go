package vision

import (
	"fmt"
	"strings"
)

// Zone is one of the three horizontal bands of the frame.
type Zone int

const (
	ZoneOuter  Zone = iota // below the outer cut-line
	ZoneMiddle             // between the cut-lines
	ZoneInner              // everything else
)

func (z Zone) String() string {
	switch z {
	case ZoneOuter:
		return "outer"
	case ZoneMiddle:
		return "middle"
	case ZoneInner:
		return "inner"
	default:
		return "unknown"
	}
}

// ZoneFor assigns a centroid row to a zone. The comparisons run in a fixed
// order and are strict, so a centroid exactly on a cut-line falls through
// to the next test.
func ZoneFor(y, height float64, b ZoneBoundaries) Zone {
	outerLim, innerLim := b.Limits(height)
	switch {
	case y > outerLim:
		return ZoneOuter
	case y > innerLim:
		return ZoneMiddle
	default:
		return ZoneInner
	}
}

// ZoneOccupancy records which zones held at least one centroid in the
// current frame.
type ZoneOccupancy struct {
	OuterHit  bool `json:"outer_hit"`
	MiddleHit bool `json:"middle_hit"`
	InnerHit  bool `json:"inner_hit"`
}

// Mark sets the flag for z. Flags are never cleared.
func (o *ZoneOccupancy) Mark(z Zone) {
	switch z {
	case ZoneOuter:
		o.OuterHit = true
	case ZoneMiddle:
		o.MiddleHit = true
	case ZoneInner:
		o.InnerHit = true
	}
}

// Empty reports whether no zone was hit.
func (o ZoneOccupancy) Empty() bool {
	return !o.OuterHit && !o.MiddleHit && !o.InnerHit
}

// Vote is one contour's contribution to the occupancy.
type Vote struct {
	Centroid Centroid `json:"centroid"`
	Zone     Zone     `json:"zone"`
}

// Classify votes every contour centroid into a zone for a frame of the
// given height. Contours without area have no centroid and are skipped.
// The result does not depend on contour order.
func Classify(contours []Contour, height float64, b ZoneBoundaries) ZoneOccupancy {
	occ, _ := classify(contours, height, b)
	return occ
}

func classify(contours []Contour, height float64, b ZoneBoundaries) (ZoneOccupancy, []Vote) {
	var occ ZoneOccupancy
	votes := make([]Vote, 0, len(contours))
	for _, c := range contours {
		centroid, ok := c.Centroid()
		if !ok {
			continue
		}
		z := ZoneFor(centroid.Y, height, b)
		occ.Mark(z)
		votes = append(votes, Vote{Centroid: centroid, Zone: z})
	}
	return occ, votes
}

// MarshalText encodes the zone by name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText accepts any name understood by ParseZone.
func (z *Zone) UnmarshalText(b []byte) error {
	zone, err := ParseZone(string(b))
	if err != nil {
		return err
	}
	*z = zone
	return nil
}

// ParseZone maps outer, middle or inner to a Zone.
func ParseZone(name string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "outer":
		return ZoneOuter, nil
	case "middle":
		return ZoneMiddle, nil
	case "inner":
		return ZoneInner, nil
	default:
		return 0, fmt.Errorf("unknown zone %q", name)
	}
}
