package diagram

import "math"

// Field coordinate bounds. Raw pointer positions map onto [0,100] but
// entities are clamped to [FieldMin,FieldMax] so they never sit on the
// boundary markings.
const (
	FieldMin = 3.0
	FieldMax = 97.0
)

// Rect is a canvas bounding rectangle in device pixels, as reported by the
// embedding UI for the diagram canvas element.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// MapPointer converts a raw pointer or touch position into normalized,
// clamped field coordinates. Mouse and touch input go through the same
// mapping; a single active pointer is assumed.
func MapPointer(clientX, clientY float64, rect Rect) Point {
	return Point{
		X: clampField((clientX - rect.Left) / rect.Width * 100),
		Y: clampField((clientY - rect.Top) / rect.Height * 100),
	}
}

func clampField(v float64) float64 {
	return math.Min(FieldMax, math.Max(FieldMin, v))
}

func distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// pointSegmentDistance returns the distance from p to the segment ab.
func pointSegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Min(1, math.Max(0, t))
	return distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}
