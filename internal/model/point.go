package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidCoordinate is returned when a coordinate component is negative.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a tile coordinate in the game world.
// Value type, передаётся по значению (immutable).
type Point struct {
	X int32 `yaml:"x" json:"x"`
	Y int32 `yaml:"y" json:"y"`
}

// NewPoint validates and creates a Point.
func NewPoint(x, y int32) (Point, error) {
	if x < 0 || y < 0 {
		return Point{}, fmt.Errorf("point (%d, %d): %w", x, y, ErrInvalidCoordinate)
	}
	return Point{X: x, Y: y}, nil
}

// MustPoint is NewPoint for compile-time constant coordinates (tables, tests).
// Panics on negative input.
func MustPoint(x, y int32) Point {
	p, err := NewPoint(x, y)
	if err != nil {
		panic(err)
	}
	return p
}

// InBounds reports whether the point lies inside the inclusive rectangle.
func (p Point) InBounds(x1, y1, x2, y2 int32) bool {
	return p.X >= x1 && p.X <= x2 && p.Y >= y1 && p.Y <= y2
}

// DistanceTo returns the truncated euclidean distance in tiles.
func (p Point) DistanceTo(other Point) int32 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return int32(math.Sqrt(dx*dx + dy*dy))
}

// WithinRange reports whether other is at most radius tiles away.
func (p Point) WithinRange(other Point, radius int32) bool {
	return p.DistanceTo(other) <= radius
}

// WithinGridRange snaps both points to the 8x8 grid and compares cell distance.
func (p Point) WithinGridRange(other Point, gridSize int32) bool {
	dx := (p.X >> 3) - (other.X >> 3)
	dy := (p.Y >> 3) - (other.Y >> 3)
	return dx <= gridSize && dx >= -gridSize && dy <= gridSize && dy >= -gridSize
}

// Label returns the "x,y" form used as a fallback zone name.
func (p Point) Label() string {
	return strconv.Itoa(int(p.X)) + "," + strconv.Itoa(int(p.Y))
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Rect is an inclusive axis-aligned rectangle.
type Rect struct {
	MinX int32 `yaml:"min_x" json:"min_x"`
	MinY int32 `yaml:"min_y" json:"min_y"`
	MaxX int32 `yaml:"max_x" json:"max_x"`
	MaxY int32 `yaml:"max_y" json:"max_y"`
}

// NewRect creates a rectangle from two corners in any order.
func NewRect(x1, y1, x2, y2 int32) Rect {
	return Rect{
		MinX: min(x1, x2),
		MinY: min(y1, y2),
		MaxX: max(x1, x2),
		MaxY: max(y1, y2),
	}
}

// Contains reports whether p lies inside the rectangle, edges included.
func (r Rect) Contains(p Point) bool {
	return p.InBounds(r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// ContainsStrict reports whether p lies strictly inside the rectangle, edges excluded.
func (r Rect) ContainsStrict(p Point) bool {
	return p.X > r.MinX && p.Y > r.MinY && p.X < r.MaxX && p.Y < r.MaxY
}

// Clamp moves p to the nearest point inside the rectangle.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: min(max(p.X, r.MinX), r.MaxX),
		Y: min(max(p.Y, r.MinY), r.MaxY),
	}
}
