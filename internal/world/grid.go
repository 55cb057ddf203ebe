package world

import "github.com/udisondev/rsckernel/internal/model"

const (
	// RegionShift: 2^4 = 16 tiles per region side.
	RegionShift = 4

	// RegionSize in tiles.
	RegionSize = 1 << RegionShift

	// ViewRadius is how far (in tiles) a player sees other entities.
	// A 3×3 region window always covers it.
	ViewRadius = RegionSize
)

// regionKey indexes a region in the sparse grid.
type regionKey struct {
	rx, ry int32
}

// CoordToRegionIndex converts a tile coordinate to region indices.
func CoordToRegionIndex(p model.Point) (rx, ry int32) {
	return p.X >> RegionShift, p.Y >> RegionShift
}

// RegionIndexToCoord returns the center tile of a region.
func RegionIndexToCoord(rx, ry int32) model.Point {
	return model.Point{
		X: (rx << RegionShift) + RegionSize/2,
		Y: (ry << RegionShift) + RegionSize/2,
	}
}

func keyOf(p model.Point) regionKey {
	rx, ry := CoordToRegionIndex(p)
	return regionKey{rx: rx, ry: ry}
}
