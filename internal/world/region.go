package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/rsckernel/internal/model"
)

// Region is one cell of the spatial index (RegionSize×RegionSize tiles).
// Membership is concurrent-safe; snapshots are cached until the next change.
type Region struct {
	rx, ry int32

	members sync.Map // model.ObjectID → struct{}

	snapshotCache atomic.Value // []model.ObjectID (immutable after rebuild)
	snapshotDirty atomic.Bool
	version       atomic.Uint64
}

// NewRegion creates an empty region.
func NewRegion(rx, ry int32) *Region {
	r := &Region{rx: rx, ry: ry}
	r.snapshotDirty.Store(true)
	return r
}

// RX returns region X index.
func (r *Region) RX() int32 { return r.rx }

// RY returns region Y index.
func (r *Region) RY() int32 { return r.ry }

// Version is bumped on every add/remove.
func (r *Region) Version() uint64 { return r.version.Load() }

// Add puts an entity into the region.
func (r *Region) Add(id model.ObjectID) {
	r.members.Store(id, struct{}{})
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// Remove takes an entity out of the region.
func (r *Region) Remove(id model.ObjectID) {
	r.members.Delete(id)
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// Snapshot returns the cached member list.
// IMPORTANT: returned slice is immutable, DO NOT modify.
func (r *Region) Snapshot() []model.ObjectID {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return cache.([]model.ObjectID)
		}
	}
	return r.rebuildSnapshot()
}

func (r *Region) rebuildSnapshot() []model.ObjectID {
	// clear the flag first: a concurrent Add re-dirties it and is not lost
	r.snapshotDirty.Store(false)

	ids := make([]model.ObjectID, 0, 16)
	r.members.Range(func(key, _ any) bool {
		ids = append(ids, key.(model.ObjectID))
		return true
	})
	r.snapshotCache.Store(ids)
	return ids
}
