package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPointer(t *testing.T) {
	rect := Rect{Left: 100, Top: 50, Width: 400, Height: 200}

	cases := []struct {
		name     string
		cx, cy   float64
		wantX    float64
		wantY    float64
	}{
		{"center", 300, 150, 50, 50},
		{"quarter", 200, 100, 25, 25},
		{"left of canvas clamps to min", 0, 150, FieldMin, 50},
		{"right of canvas clamps to max", 900, 150, FieldMax, 50},
		{"above canvas clamps to min", 300, 0, 50, FieldMin},
		{"below canvas clamps to max", 300, 900, 50, FieldMax},
		{"near edge inside margin clamps", 104, 52, FieldMin, FieldMin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := MapPointer(tc.cx, tc.cy, rect)
			assert.InDelta(t, tc.wantX, p.X, 1e-9)
			assert.InDelta(t, tc.wantY, p.Y, 1e-9)
		})
	}
}

func TestMapPointer_AlwaysInsideField(t *testing.T) {
	rect := Rect{Left: 0, Top: 0, Width: 500, Height: 300}
	for _, cx := range []float64{-1000, -1, 0, 250, 500, 501, 99999} {
		for _, cy := range []float64{-1000, -1, 0, 150, 300, 301, 99999} {
			p := MapPointer(cx, cy, rect)
			assert.GreaterOrEqual(t, p.X, FieldMin)
			assert.LessOrEqual(t, p.X, FieldMax)
			assert.GreaterOrEqual(t, p.Y, FieldMin)
			assert.LessOrEqual(t, p.Y, FieldMax)
		}
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := Point{0, 0}, Point{10, 0}
	assert.InDelta(t, 2, pointSegmentDistance(Point{5, 2}, a, b), 1e-9)
	assert.InDelta(t, 5, pointSegmentDistance(Point{15, 0}, a, b), 1e-9)
	assert.InDelta(t, 0, pointSegmentDistance(Point{10, 0}, a, b), 1e-9)
	// Degenerate segment.
	assert.InDelta(t, 3, pointSegmentDistance(Point{3, 0}, a, a), 1e-9)
}
