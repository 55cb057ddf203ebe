package region

import "github.com/udisondev/rsckernel/internal/model"

// BandState tags a wilderness band.
type BandState int32

const (
	BandMembersOnly BandState = iota
	BandFreeForAll
)

// String returns the config spelling of the state.
func (s BandState) String() string {
	switch s {
	case BandMembersOnly:
		return "members"
	case BandFreeForAll:
		return "free"
	default:
		return "unknown"
	}
}

// ParseBandState converts the config spelling back to a BandState.
func ParseBandState(s string) (BandState, bool) {
	switch s {
	case "members":
		return BandMembersOnly, true
	case "free":
		return BandFreeForAll, true
	default:
		return 0, false
	}
}

// WildernessBand is a rectangle of the wilderness with a fixed membership rule.
type WildernessBand struct {
	Name  string
	Rect  model.Rect
	State BandState
}

// Bands is an immutable, ordered band list. The first band containing a point
// decides, so registration order matters.
type Bands struct {
	list []WildernessBand
}

// NewBands copies the given bands in order.
func NewBands(bands ...WildernessBand) Bands {
	list := make([]WildernessBand, len(bands))
	copy(list, bands)
	return Bands{list: list}
}

// DefaultBands returns the stock band list: the Edgeville dungeon, the red
// dragon isle and the underground lava maze, all members-only.
func DefaultBands() Bands {
	return NewBands(
		WildernessBand{Name: "edgeville_dungeon", Rect: model.Rect{MinX: 195, MinY: 3206, MaxX: 234, MaxY: 3258}, State: BandMembersOnly},
		WildernessBand{Name: "red_dragons", Rect: model.Rect{MinX: 129, MinY: 180, MaxX: 163, MaxY: 219}, State: BandMembersOnly},
		WildernessBand{Name: "lava_maze_dungeon", Rect: model.Rect{MinX: 243, MinY: 2988, MaxX: 283, MaxY: 3020}, State: BandMembersOnly},
	)
}

// Len returns number of bands.
func (b Bands) Len() int { return len(b.list) }

// All returns a copy of the bands in registration order.
func (b Bands) All() []WildernessBand {
	out := make([]WildernessBand, len(b.list))
	copy(out, b.list)
	return out
}
