package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsckernel/internal/model"
)

func TestClassifier_DangerLevel(t *testing.T) {
	c := NewClassifier(DefaultBands())

	tests := []struct {
		name string
		x, y int32
		want int32
	}{
		{"top of plane 0", 100, 0, 72},
		{"deep wild", 100, 100, 55},
		{"low wild", 100, 200, 38},
		{"last wild row", 100, 426, 1},
		{"first safe row", 100, 427, 0},
		{"town", 120, 500, 0},
		{"east cutoff", 336, 100, 0},
		{"just west of cutoff", 335, 100, 55},
		{"dungeon plane", 200, 3210, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DangerLevel(model.MustPoint(tt.x, tt.y)))
		})
	}
}

func TestClassifier_DangerLevelPeriodic(t *testing.T) {
	c := NewClassifier(DefaultBands())

	for _, x := range []int32{0, 200, 335} {
		for y := int32(0); y < heightStep; y++ {
			base := c.DangerLevel(model.MustPoint(x, y))
			require.GreaterOrEqual(t, base, int32(0))
			for plane := int32(1); plane <= 3; plane++ {
				require.Equal(t, base, c.DangerLevel(model.MustPoint(x, y+plane*heightStep)),
					"x=%d y=%d plane=%d", x, y, plane)
				// x-independent west of the cutoff
				require.Equal(t, base, c.DangerLevel(model.MustPoint(0, y+plane*heightStep)))
			}
		}
	}

	for _, x := range []int32{336, 400, 1000} {
		for y := int32(0); y < 4*heightStep; y += 7 {
			require.Zero(t, c.DangerLevel(model.MustPoint(x, y)), "x=%d y=%d", x, y)
		}
	}
}

func TestClassifier_Wilderness(t *testing.T) {
	c := NewClassifier(DefaultBands())

	assert.True(t, c.InWilderness(model.MustPoint(100, 100)))
	assert.False(t, c.InWilderness(model.MustPoint(120, 500)))
	assert.True(t, c.InFreeWilderness(model.MustPoint(100, 200)))
	assert.False(t, c.InFreeWilderness(model.MustPoint(100, 100)))
	assert.False(t, c.InFreeWilderness(model.MustPoint(120, 500)))
}

func TestClassifier_ZoneNameOrder(t *testing.T) {
	c := NewClassifier(DefaultBands())

	tests := []struct {
		name string
		x, y int32
		want string
	}{
		{"range room beats brimhaven and karamja", 459, 672, "Hero's Quest Range Room"},
		{"landing beats island", 216, 740, "Tutorial Landing"},
		{"rats beat island", 230, 730, "Tutorial Rats"},
		{"island", 195, 725, "Tutorial Island"},
		{"black hole", 305, 3300, "Black Hole"},
		{"mod room", 70, 1640, "Mod Room"},
		{"free wild beats wild", 100, 200, "F2P Wilderness"},
		{"members levels", 100, 100, "Wilderness"},
		{"varrock", 120, 500, "Varrock"},
		{"edgeville", 215, 440, "Edgeville"},
		{"party hall beats seers", 495, 465, "Seers Party Hall"},
		{"seers", 520, 450, "Seers"},
		{"shilo beats karamja", 400, 830, "Shilo Village"},
		{"brimhaven beats karamja", 450, 650, "Brimhaven"},
		{"karamja", 600, 900, "Karamja"},
		{"grand tree", 415, 160, "Grand Tree"},
		{"fallback label", 1000, 1000, "1000,1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ZoneName(model.MustPoint(tt.x, tt.y)))
		})
	}
}

func TestClassifier_IsMembersOnly(t *testing.T) {
	c := NewClassifier(DefaultBands())

	assert.True(t, c.IsMembersOnly(model.MustPoint(120, 500)), "outside wilderness is always open")
	assert.True(t, c.IsMembersOnly(model.MustPoint(200, 3210)), "edgeville dungeon band")
	assert.True(t, c.IsMembersOnly(model.MustPoint(195, 3206)), "band corner is included")
	assert.True(t, c.IsMembersOnly(model.MustPoint(100, 133)), "level 50 without band")
	assert.False(t, c.IsMembersOnly(model.MustPoint(100, 200)), "level 38 without band")
}

func TestClassifier_BandOrderDecides(t *testing.T) {
	free := WildernessBand{Name: "free", Rect: model.NewRect(90, 120, 110, 140), State: BandFreeForAll}
	members := WildernessBand{Name: "members", Rect: model.NewRect(80, 110, 120, 150), State: BandMembersOnly}

	p := model.MustPoint(100, 133) // level 50
	assert.False(t, NewClassifier(NewBands(free, members)).IsMembersOnly(p))
	assert.True(t, NewClassifier(NewBands(members, free)).IsMembersOnly(p))
}

func TestClassifier_LookupBandIsStrict(t *testing.T) {
	c := NewClassifier(DefaultBands())

	b, ok := c.LookupBand(model.MustPoint(200, 3210))
	require.True(t, ok)
	assert.Equal(t, "edgeville_dungeon", b.Name)

	_, ok = c.LookupBand(model.MustPoint(195, 3206))
	assert.False(t, ok, "corner is excluded by the strict lookup")
	_, ok = c.LookupBand(model.MustPoint(234, 3230))
	assert.False(t, ok, "edge is excluded by the strict lookup")
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultBands())

	got := c.Classify(model.MustPoint(100, 100))
	assert.Equal(t, Classification{Zone: "Wilderness", DangerLevel: 55, MembersOnly: true}, got)

	got = c.Classify(model.MustPoint(100, 200))
	assert.Equal(t, Classification{Zone: "F2P Wilderness", DangerLevel: 38, MembersOnly: false}, got)
}

func TestClassifier_InArea(t *testing.T) {
	c := NewClassifier(DefaultBands())

	assert.True(t, c.InArea(model.MustPoint(250, 450), AreaDwarf))
	assert.True(t, c.InArea(model.MustPoint(460, 890), AreaTotemPole))
	assert.True(t, c.InArea(model.MustPoint(420, 3720), AreaBoulderRock))
	assert.False(t, c.InArea(model.MustPoint(100, 100), AreaMageArena))
}

func TestNewBands_Copies(t *testing.T) {
	src := []WildernessBand{{Name: "a", State: BandMembersOnly}}
	b := NewBands(src...)
	src[0].Name = "mutated"

	assert.Equal(t, "a", b.All()[0].Name)
	assert.Equal(t, 1, b.Len())
}

func TestParseBandState(t *testing.T) {
	s, ok := ParseBandState("free")
	require.True(t, ok)
	assert.Equal(t, BandFreeForAll, s)
	assert.Equal(t, "members", BandMembersOnly.String())

	_, ok = ParseBandState("vip")
	assert.False(t, ok)
}
