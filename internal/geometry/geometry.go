package geometry

import (
	"image"
	"math"
)

// DefaultCloseThreshold is the center distance, in pixels, below which two
// boxes are treated as occupying the same place on the page.
const DefaultCloseThreshold = 100.0

// Point is a single polygon vertex. JSON decoding is case-insensitive, so
// both {"X":1,"Y":2} (OCR vendor output) and {"x":1,"y":2} are accepted.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the minimal axis-aligned rectangle covering a polygon.
// Width and Height are never negative.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BoundingBoxOf returns the minimal axis-aligned box covering every point of
// polygon. A nil or empty polygon yields the zero box.
func BoundingBoxOf(polygon []Point) BoundingBox {
	if len(polygon) == 0 {
		return BoundingBox{}
	}

	minX, minY := polygon[0].X, polygon[0].Y
	maxX, maxY := minX, minY
	for _, p := range polygon[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	return BoundingBox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	return Point{
		X: b.X + b.Width/2,
		Y: b.Y + b.Height/2,
	}
}

// IsZero reports whether b is the degenerate box produced by an empty polygon.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Rect converts the box to an integer pixel rectangle grown by pad pixels on
// every side. The rectangle always covers the fractional box completely.
func (b BoundingBox) Rect(pad int) image.Rectangle {
	x1 := int(math.Floor(b.X)) - pad
	y1 := int(math.Floor(b.Y)) - pad
	x2 := int(math.Ceil(b.X+b.Width)) + pad
	y2 := int(math.Ceil(b.Y+b.Height)) + pad
	return image.Rect(x1, y1, x2, y2)
}

// CenterDistance is the Euclidean distance between the centers of a and b.
func CenterDistance(a, b BoundingBox) float64 {
	ca, cb := a.Center(), b.Center()
	return math.Hypot(ca.X-cb.X, ca.Y-cb.Y)
}

// IsClose reports whether the centers of a and b are strictly less than
// threshold apart.
func IsClose(a, b BoundingBox, threshold float64) bool {
	return CenterDistance(a, b) < threshold
}
