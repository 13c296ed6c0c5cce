package diagram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Hit radii in field units, matching the on-screen size of the rendered
// entities.
const (
	elementHitRadius = 2.5
	lineHitRadius    = 1.5
)

// Scene is the committed visual content of one play or formation: elements,
// legacy routes, drawing lines and shapes. Entities are kept in insertion
// order for rendering, with id-keyed lookup tables alongside so weak
// references (route start elements) resolve without scanning.
type Scene struct {
	Elements []PlayElement `json:"elements"`
	Routes   []PlayRoute   `json:"routes"`
	Lines    []DrawingLine `json:"lines"`
	Shapes   []PlayShape   `json:"shapes"`

	elementIdx map[string]int
	routeIdx   map[string]int
	lineIdx    map[string]int
	shapeIdx   map[string]int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	s := &Scene{}
	s.reindex()
	return s
}

// SceneFrom builds a scene from stored collections, e.g. a play document
// loaded from the store.
func SceneFrom(elements []PlayElement, routes []PlayRoute, lines []DrawingLine, shapes []PlayShape) *Scene {
	s := &Scene{
		Elements: append([]PlayElement(nil), elements...),
		Routes:   append([]PlayRoute(nil), routes...),
		Lines:    append([]DrawingLine(nil), lines...),
		Shapes:   append([]PlayShape(nil), shapes...),
	}
	s.reindex()
	return s
}

func (s *Scene) reindex() {
	s.elementIdx = make(map[string]int, len(s.Elements))
	for i, e := range s.Elements {
		s.elementIdx[e.ID] = i
	}
	s.routeIdx = make(map[string]int, len(s.Routes))
	for i, r := range s.Routes {
		s.routeIdx[r.ID] = i
	}
	s.lineIdx = make(map[string]int, len(s.Lines))
	for i, l := range s.Lines {
		s.lineIdx[l.ID] = i
	}
	s.shapeIdx = make(map[string]int, len(s.Shapes))
	for i, sh := range s.Shapes {
		s.shapeIdx[sh.ID] = i
	}
}

// Element returns the element with the given id, if present.
func (s *Scene) Element(id string) (PlayElement, bool) {
	i, ok := s.elementIdx[id]
	if !ok {
		return PlayElement{}, false
	}
	return s.Elements[i], true
}

// Route returns the route with the given id, if present.
func (s *Scene) Route(id string) (PlayRoute, bool) {
	i, ok := s.routeIdx[id]
	if !ok {
		return PlayRoute{}, false
	}
	return s.Routes[i], true
}

// Line returns the drawing line with the given id, if present.
func (s *Scene) Line(id string) (DrawingLine, bool) {
	i, ok := s.lineIdx[id]
	if !ok {
		return DrawingLine{}, false
	}
	return s.Lines[i], true
}

// Shape returns the shape with the given id, if present.
func (s *Scene) Shape(id string) (PlayShape, bool) {
	i, ok := s.shapeIdx[id]
	if !ok {
		return PlayShape{}, false
	}
	return s.Shapes[i], true
}

// AddElement places a new player marker at p. The label is auto-numbered
// from the position abbreviation, e.g. the second "WR" becomes "WR2".
func (s *Scene) AddElement(kind ElementKind, position string, p Point) PlayElement {
	e := PlayElement{
		ID:    uuid.NewString(),
		Kind:  kind,
		Label: s.NextLabel(position),
		X:     clampField(p.X),
		Y:     clampField(p.Y),
	}
	s.elementIdx[e.ID] = len(s.Elements)
	s.Elements = append(s.Elements, e)
	return e
}

// NextLabel returns the next auto-numbered label for a position
// abbreviation: "QB" if unused, otherwise "QB2", "QB3", ...
func (s *Scene) NextLabel(position string) string {
	n := 1
	for _, e := range s.Elements {
		base := strings.TrimRight(e.Label, "0123456789")
		if base != position {
			continue
		}
		suffix := e.Label[len(base):]
		if suffix == "" {
			if n < 2 {
				n = 2
			}
			continue
		}
		if v, err := strconv.Atoi(suffix); err == nil && v >= n {
			n = v + 1
		}
	}
	if n == 1 {
		return position
	}
	return position + strconv.Itoa(n)
}

// MoveElement updates an element's position, clamped to the field.
func (s *Scene) MoveElement(id string, p Point) error {
	i, ok := s.elementIdx[id]
	if !ok {
		return fmt.Errorf("element %s not in scene", id)
	}
	s.Elements[i].X = clampField(p.X)
	s.Elements[i].Y = clampField(p.Y)
	return nil
}

// RemoveElement deletes an element and cascades to every route whose start
// element it was. Unrelated routes are untouched.
func (s *Scene) RemoveElement(id string) error {
	i, ok := s.elementIdx[id]
	if !ok {
		return fmt.Errorf("element %s not in scene", id)
	}
	s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)

	kept := s.Routes[:0]
	for _, r := range s.Routes {
		if r.StartElementID != id {
			kept = append(kept, r)
		}
	}
	s.Routes = kept
	s.reindex()
	return nil
}

// AddRoute attaches a legacy route to an element. The element must exist.
func (s *Scene) AddRoute(startElementID string, points []Point, color string, style RouteStyle) (PlayRoute, error) {
	if _, ok := s.elementIdx[startElementID]; !ok {
		return PlayRoute{}, fmt.Errorf("route start element %s not in scene", startElementID)
	}
	r := PlayRoute{
		ID:             uuid.NewString(),
		StartElementID: startElementID,
		Points:         append([]Point(nil), points...),
		Color:          color,
		Style:          style,
	}
	s.routeIdx[r.ID] = len(s.Routes)
	s.Routes = append(s.Routes, r)
	return r, nil
}

// MoveRoutePoint repositions one point of a route, clamped to the field.
func (s *Scene) MoveRoutePoint(id string, index int, p Point) error {
	i, ok := s.routeIdx[id]
	if !ok {
		return fmt.Errorf("route %s not in scene", id)
	}
	if index < 0 || index >= len(s.Routes[i].Points) {
		return fmt.Errorf("route %s has no point %d", id, index)
	}
	s.Routes[i].Points[index] = Point{X: clampField(p.X), Y: clampField(p.Y)}
	return nil
}

// RemoveRoute deletes a route by id.
func (s *Scene) RemoveRoute(id string) error {
	i, ok := s.routeIdx[id]
	if !ok {
		return fmt.Errorf("route %s not in scene", id)
	}
	s.Routes = append(s.Routes[:i], s.Routes[i+1:]...)
	s.reindex()
	return nil
}

// OrphanedRoutes returns routes whose start element no longer resolves.
// Renderers skip these; the maintenance sweep deletes them.
func (s *Scene) OrphanedRoutes() []PlayRoute {
	var orphans []PlayRoute
	for _, r := range s.Routes {
		if _, ok := s.elementIdx[r.StartElementID]; !ok {
			orphans = append(orphans, r)
		}
	}
	return orphans
}

func (s *Scene) addLine(l DrawingLine) {
	s.lineIdx[l.ID] = len(s.Lines)
	s.Lines = append(s.Lines, l)
}

// RemoveLine deletes a drawing line by id.
func (s *Scene) RemoveLine(id string) error {
	i, ok := s.lineIdx[id]
	if !ok {
		return fmt.Errorf("line %s not in scene", id)
	}
	s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	s.reindex()
	return nil
}

func (s *Scene) addShape(sh PlayShape) {
	s.shapeIdx[sh.ID] = len(s.Shapes)
	s.Shapes = append(s.Shapes, sh)
}

// MoveShape recenters a shape, clamped to the field.
func (s *Scene) MoveShape(id string, p Point) error {
	i, ok := s.shapeIdx[id]
	if !ok {
		return fmt.Errorf("shape %s not in scene", id)
	}
	s.Shapes[i].X = clampField(p.X)
	s.Shapes[i].Y = clampField(p.Y)
	return nil
}

// RemoveShape deletes a shape by id.
func (s *Scene) RemoveShape(id string) error {
	i, ok := s.shapeIdx[id]
	if !ok {
		return fmt.Errorf("shape %s not in scene", id)
	}
	s.Shapes = append(s.Shapes[:i], s.Shapes[i+1:]...)
	s.reindex()
	return nil
}

// HitKind identifies which entity collection a hit test landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitElement
	HitRoutePoint
	HitLine
	HitShape
)

// Hit is the result of testing a pointer position against the scene.
type Hit struct {
	Kind       HitKind
	ID         string
	PointIndex int // route point index, for HitRoutePoint
}

// HitTest finds the topmost entity under p. Elements win over route points,
// route points over lines, lines over shapes, mirroring render stacking
// order.
func (s *Scene) HitTest(p Point) Hit {
	for i := len(s.Elements) - 1; i >= 0; i-- {
		if distance(p, s.Elements[i].Pos()) <= elementHitRadius {
			return Hit{Kind: HitElement, ID: s.Elements[i].ID}
		}
	}
	for i := len(s.Routes) - 1; i >= 0; i-- {
		r := s.Routes[i]
		if _, ok := s.elementIdx[r.StartElementID]; !ok {
			continue
		}
		for j, pt := range r.Points {
			if distance(p, pt) <= lineHitRadius {
				return Hit{Kind: HitRoutePoint, ID: r.ID, PointIndex: j}
			}
		}
	}
	for i := len(s.Lines) - 1; i >= 0; i-- {
		pts := s.Lines[i].Points
		for j := 0; j+1 < len(pts); j++ {
			if pointSegmentDistance(p, pts[j], pts[j+1]) <= lineHitRadius {
				return Hit{Kind: HitLine, ID: s.Lines[i].ID}
			}
		}
	}
	for i := len(s.Shapes) - 1; i >= 0; i-- {
		sh := s.Shapes[i]
		if p.X >= sh.X-sh.Width/2 && p.X <= sh.X+sh.Width/2 &&
			p.Y >= sh.Y-sh.Height/2 && p.Y <= sh.Y+sh.Height/2 {
			return Hit{Kind: HitShape, ID: sh.ID}
		}
	}
	return Hit{Kind: HitNone}
}
