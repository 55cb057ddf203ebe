package region

import (
	"math"

	"github.com/udisondev/rsckernel/internal/model"
)

// Zone is a named set of rectangles, or a danger-level range when DangerMin > 0.
type Zone struct {
	Name      string
	Rects     []model.Rect
	DangerMin int32
	DangerMax int32
}

func (z Zone) matches(p model.Point, level int32) bool {
	if z.DangerMin > 0 {
		return level >= z.DangerMin && level <= z.DangerMax
	}
	for _, r := range z.Rects {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

func rect(x1, y1, x2, y2 int32) model.Rect {
	return model.Rect{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// zoneOrder is the naming priority: special rooms, tutorial, wilderness,
// towns. Overlapping zones resolve to the earlier entry.
var zoneOrder = []Zone{
	{Name: "Hero's Quest Range Room", Rects: []model.Rect{rect(459, 672, 460, 673)}},
	{Name: "Tutorial Landing", Rects: []model.Rect{rect(214, 739, 221, 747)}},
	{Name: "Tutorial Rats", Rects: []model.Rect{rect(226, 728, 234, 738)}},
	{Name: "Tutorial Island", Rects: []model.Rect{rect(190, 720, 240, 770)}},
	{Name: "Black Hole", Rects: []model.Rect{rect(303, 3298, 307, 3302)}},
	{Name: "Mod Room", Rects: []model.Rect{rect(64, 1639, 80, 1643)}},
	{Name: "F2P Wilderness", DangerMin: 1, DangerMax: 48},
	{Name: "Wilderness", DangerMin: 1, DangerMax: math.MaxInt32},
	{Name: "Varrock", Rects: []model.Rect{rect(78, 490, 175, 537), rect(92, 444, 150, 490)}},
	{Name: "Edgeville", Rects: []model.Rect{rect(198, 427, 229, 450), rect(208, 451, 227, 472)}},
	{Name: "Barbarian Village", Rects: []model.Rect{rect(209, 491, 247, 529)}},
	{Name: "Draynor", Rects: []model.Rect{rect(210, 608, 233, 659)}},
	{Name: "Lumbridge", Rects: []model.Rect{rect(108, 620, 147, 670)}},
	{Name: "Al Kharid", Rects: []model.Rect{rect(48, 659, 96, 703)}},
	{Name: "Falador", Rects: []model.Rect{rect(245, 531, 341, 583)}},
	{Name: "Port Sarim", Rects: []model.Rect{rect(246, 621, 286, 670)}},
	{Name: "Taverly", Rects: []model.Rect{rect(343, 454, 389, 512)}},
	{Name: "Entrana", Rects: []model.Rect{rect(395, 525, 441, 573)}},
	{Name: "Catherby", Rects: []model.Rect{rect(415, 475, 456, 508)}},
	{Name: "Seers Party Hall", Rects: []model.Rect{rect(490, 1408, 500, 1415), rect(490, 464, 500, 471)}},
	{Name: "Seers", Rects: []model.Rect{rect(486, 438, 534, 482)}},
	{Name: "Gnome Stronghold", Rects: []model.Rect{rect(673, 432, 751, 537)}},
	{Name: "Ardougne", Rects: []model.Rect{rect(500, 537, 600, 708)}},
	{Name: "Yanille", Rects: []model.Rect{rect(577, 741, 647, 767)}},
	{Name: "Brimhaven", Rects: []model.Rect{rect(435, 644, 477, 709)}},
	{Name: "Shilo Village", Rects: []model.Rect{rect(384, 817, 430, 860)}},
	{Name: "Karamja", Rects: []model.Rect{rect(323, 644, 679, 908)}},
	{Name: "Fisher King Realm", Rects: []model.Rect{
		rect(388, 4, 427, 40), rect(484, 4, 523, 40),
		rect(411, 976, 519, 984), rect(411, 1920, 518, 1925),
		rect(511, 976, 519, 984), rect(511, 1920, 518, 1925),
	}},
	{Name: "Grand Tree", Rects: []model.Rect{rect(410, 158, 422, 170)}},
}

// Zones returns the naming priority list.
func Zones() []Zone {
	out := make([]Zone, len(zoneOrder))
	copy(out, zoneOrder)
	return out
}

// Area names a special-case region used by rule code (not by zone naming).
type Area int32

const (
	AreaDwarf Area = iota
	AreaPlatform
	AreaMageArena
	AreaTouristTrapCave
	AreaTouristTrapCaveEast
	AreaTouristTrapCaveWest
	AreaFlameWall
	AreaBoulderRock
	AreaTotemPole
)

var areaRects = map[Area][]model.Rect{
	AreaDwarf:               {rect(240, 432, 309, 527)},
	AreaPlatform:            {rect(492, 614, 498, 620)},
	AreaMageArena:           {rect(220, 122, 236, 137)},
	AreaTouristTrapCave:     {rect(49, 3600, 95, 3647)},
	AreaTouristTrapCaveEast: {rect(79, 3614, 95, 3647)},
	AreaTouristTrapCaveWest: {rect(48, 3633, 78, 3647)},
	AreaFlameWall:           {rect(450, 3704, 455, 3711)},
	AreaBoulderRock:         {rect(404, 3730, 418, 3744), rect(407, 3718, 421, 3732), rect(417, 3716, 431, 3730)},
	AreaTotemPole:           {rect(360, 881, 374, 895), rect(388, 889, 402, 903), rect(456, 882, 470, 896)},
}
