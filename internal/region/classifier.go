// Package region classifies world coordinates: wilderness danger level,
// members-only rules and human-readable zone names.
package region

import "github.com/udisondev/rsckernel/internal/model"

const (
	// heightStep is the vertical size of one map plane.
	heightStep = 944

	// wildernessCutoffX: east of this x the world is never wilderness.
	wildernessCutoffX = 2640 - 2304

	membersDangerMin = 48
	membersDangerMax = 56
	freeDangerMax    = 48
)

// Classification is the full result of classifying a coordinate.
type Classification struct {
	Zone        string
	DangerLevel int32
	MembersOnly bool
}

// Classifier answers region questions for a fixed band configuration.
// Safe for concurrent use: it holds no mutable state.
type Classifier struct {
	bands Bands
}

// NewClassifier creates a classifier over the given bands.
func NewClassifier(bands Bands) *Classifier {
	return &Classifier{bands: bands}
}

// Bands returns the band configuration.
func (c *Classifier) Bands() Bands { return c.bands }

// DangerLevel returns the wilderness level of p, 0 when safe.
// The level repeats every map plane (heightStep) and is 0 east of the cutoff.
func (c *Classifier) DangerLevel(p model.Point) int32 {
	raw := 2203 - (p.Y + (1776 - heightStep*(p.Y/heightStep)))
	if p.X >= wildernessCutoffX {
		raw = -50
	}
	if raw > 0 {
		return 1 + raw/6
	}
	return 0
}

// InWilderness reports whether p has a positive danger level.
func (c *Classifier) InWilderness(p model.Point) bool {
	return c.DangerLevel(p) > 0
}

// InFreeWilderness reports whether p lies in the free-to-play wilderness levels.
func (c *Classifier) InFreeWilderness(p model.Point) bool {
	level := c.DangerLevel(p)
	return level >= 1 && level <= freeDangerMax
}

// ZoneName returns the first matching zone name, or "x,y" when none match.
func (c *Classifier) ZoneName(p model.Point) string {
	return c.zoneName(p, c.DangerLevel(p))
}

func (c *Classifier) zoneName(p model.Point, level int32) string {
	for _, z := range zoneOrder {
		if z.matches(p, level) {
			return z.Name
		}
	}
	return p.Label()
}

// Classify returns zone name, danger level and the members-only verdict.
func (c *Classifier) Classify(p model.Point) Classification {
	level := c.DangerLevel(p)
	return Classification{
		Zone:        c.zoneName(p, level),
		DangerLevel: level,
		MembersOnly: c.membersOnly(p, level),
	}
}

// IsMembersOnly decides whether p is restricted to members.
// Outside the wilderness it is always true. Inside, the first band whose
// rectangle contains p (edges included) decides; with no band match the
// members-only levels are 48..56.
func (c *Classifier) IsMembersOnly(p model.Point) bool {
	return c.membersOnly(p, c.DangerLevel(p))
}

func (c *Classifier) membersOnly(p model.Point, level int32) bool {
	if level <= 0 {
		return true
	}
	for _, b := range c.bands.list {
		if b.Rect.Contains(p) {
			switch b.State {
			case BandMembersOnly:
				return true
			case BandFreeForAll:
				return false
			}
		}
	}
	return level >= membersDangerMin && level <= membersDangerMax
}

// LookupBand returns the first band strictly containing p (edges excluded).
// NOTE: edges are excluded here but included by IsMembersOnly.
func (c *Classifier) LookupBand(p model.Point) (WildernessBand, bool) {
	for _, b := range c.bands.list {
		if b.Rect.ContainsStrict(p) {
			return b, true
		}
	}
	return WildernessBand{}, false
}

// InArea reports whether p lies in a special-case area.
func (c *Classifier) InArea(p model.Point, a Area) bool {
	for _, r := range areaRects[a] {
		if r.Contains(p) {
			return true
		}
	}
	return false
}
