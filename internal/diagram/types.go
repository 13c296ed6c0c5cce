// Package diagram holds the play diagram engine: the scene model for one
// play's or formation's visual content, coordinate normalization, SVG path
// generation for route lines, and the pointer-driven editing state machine.
package diagram

import "fmt"

// Point is a position in normalized field coordinates. The field spans
// [0,100] on both axes; entities are kept inside [3,97] so they stay clear
// of the boundary markings.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ElementKind distinguishes offensive markers (circles) from defensive
// markers (chevrons).
type ElementKind string

const (
	KindOffense ElementKind = "offense"
	KindDefense ElementKind = "defense"
)

// ParseElementKind validates a stored kind string.
func ParseElementKind(s string) (ElementKind, error) {
	switch ElementKind(s) {
	case KindOffense, KindDefense:
		return ElementKind(s), nil
	}
	return "", fmt.Errorf("unknown element kind %q", s)
}

// LineType selects the path-generation algorithm and terminal marker for a
// drawing line.
type LineType string

const (
	LineRoute  LineType = "route"
	LineCurved LineType = "curved"
	LineZigzag LineType = "zigzag"
	LineBlock  LineType = "block"
	LineSolid  LineType = "solid"
	LineDashed LineType = "dashed"
)

// ParseLineType validates a stored line type string.
func ParseLineType(s string) (LineType, error) {
	switch LineType(s) {
	case LineRoute, LineCurved, LineZigzag, LineBlock, LineSolid, LineDashed:
		return LineType(s), nil
	}
	return "", fmt.Errorf("unknown line type %q", s)
}

// ShapeType is the closed set of tactical annotation shapes.
type ShapeType string

const (
	ShapeCircle      ShapeType = "circle"
	ShapeOval        ShapeType = "oval"
	ShapeSquare      ShapeType = "square"
	ShapeRectangle   ShapeType = "rectangle"
	ShapeTriangle    ShapeType = "triangle"
	ShapeDiamond     ShapeType = "diamond"
	ShapeX           ShapeType = "x"
	ShapeSmallCircle ShapeType = "smallCircle"
)

// ParseShapeType validates a stored shape type string.
func ParseShapeType(s string) (ShapeType, error) {
	switch ShapeType(s) {
	case ShapeCircle, ShapeOval, ShapeSquare, ShapeRectangle,
		ShapeTriangle, ShapeDiamond, ShapeX, ShapeSmallCircle:
		return ShapeType(s), nil
	}
	return "", fmt.Errorf("unknown shape type %q", s)
}

// RouteStyle is the stroke style of a legacy route.
type RouteStyle string

const (
	RouteSolid  RouteStyle = "solid"
	RouteDashed RouteStyle = "dashed"
)

// PlayElement is a player marker on the field.
type PlayElement struct {
	ID    string      `json:"id"`
	Kind  ElementKind `json:"kind"`
	Label string      `json:"label"`
	X     float64     `json:"x"`
	Y     float64     `json:"y"`
}

// Pos returns the element position as a Point.
func (e PlayElement) Pos() Point { return Point{X: e.X, Y: e.Y} }

// PlayRoute is a legacy straight route anchored to an element.
// StartElementID is a weak reference: the route is only rendered while an
// element with that id exists in the same scene.
type PlayRoute struct {
	ID             string     `json:"id"`
	StartElementID string     `json:"startElementId"`
	Points         []Point    `json:"points"`
	Color          string     `json:"color"`
	Style          RouteStyle `json:"style"`
}

// DrawingLine is a freehand line collected during a draw gesture.
type DrawingLine struct {
	ID       string   `json:"id"`
	Points   []Point  `json:"points"`
	Color    string   `json:"color"`
	LineType LineType `json:"lineType"`
}

// PlayShape is a tactical annotation shape, stored by center and size.
type PlayShape struct {
	ID        string    `json:"id"`
	ShapeType ShapeType `json:"shapeType"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Color     string    `json:"color"`
}
