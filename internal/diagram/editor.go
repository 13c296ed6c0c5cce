package diagram

import "github.com/google/uuid"

// Mode is the active editing tool.
type Mode string

const (
	ModeSelect Mode = "select"
	ModeLine   Mode = "line"
	ModeShape  Mode = "shape"
)

// moveThreshold is the minimum pointer travel, in field units, before a new
// point is recorded on a draft line. Keeps slow gestures from producing
// degenerate dense paths.
const moveThreshold = 1.0

// SelectionKind identifies what is currently selected.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectElement
	SelectRoute
	SelectLine
	SelectShape
)

// Selection is the single selected entity. Selection is mutually exclusive
// across entity kinds.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// draftKind is the closed set of in-progress editing states. Exactly one is
// active at a time, held apart from the committed scene so commit and
// discard are total transitions.
type draftKind int

const (
	draftNone draftKind = iota
	draftLine
	draftShape
	draftDrag
)

// dragTarget is the entity being dragged plus the grab offset from the
// pointer to the entity origin.
type dragTarget struct {
	hit    Hit
	offset Point
}

// Editor is the pointer-driven interaction state machine for one scene. It
// is single-threaded by construction: the embedding UI delivers pointer
// events one at a time, and the editor mutates the scene synchronously.
type Editor struct {
	scene *Scene
	mode  Mode

	// Tool palette.
	color     string
	lineType  LineType
	shapeType ShapeType

	draft      draftKind
	line       DrawingLine
	shape      PlayShape
	shapeStart Point
	drag       dragTarget

	selection Selection
}

// NewEditor creates an editor over the given scene, starting in select mode
// with default tool settings.
func NewEditor(scene *Scene) *Editor {
	return &Editor{
		scene:     scene,
		mode:      ModeSelect,
		color:     "#000000",
		lineType:  LineRoute,
		shapeType: ShapeCircle,
	}
}

// Scene returns the committed scene the editor operates on.
func (ed *Editor) Scene() *Scene { return ed.scene }

// Mode returns the active tool mode.
func (ed *Editor) Mode() Mode { return ed.mode }

// Selection returns the current selection, if any.
func (ed *Editor) Selection() Selection { return ed.selection }

// SetMode switches tools. Any in-progress draft is discarded; already
// persisted state is never rolled back.
func (ed *Editor) SetMode(m Mode) {
	ed.mode = m
	ed.discardDraft()
}

// SetColor sets the palette color for new lines and shapes.
func (ed *Editor) SetColor(c string) { ed.color = c }

// SetLineType sets the line style for new drawing lines.
func (ed *Editor) SetLineType(t LineType) { ed.lineType = t }

// SetShapeType sets the shape style for new shapes.
func (ed *Editor) SetShapeType(t ShapeType) { ed.shapeType = t }

// DraftLine returns the in-progress line, for live render feedback.
func (ed *Editor) DraftLine() (DrawingLine, bool) {
	if ed.draft != draftLine {
		return DrawingLine{}, false
	}
	return ed.line, true
}

// DraftShape returns the in-progress shape, for live render feedback.
func (ed *Editor) DraftShape() (PlayShape, bool) {
	if ed.draft != draftShape {
		return PlayShape{}, false
	}
	return ed.shape, true
}

// PointerDown begins an interaction at p (already in field coordinates).
func (ed *Editor) PointerDown(p Point) {
	switch ed.mode {
	case ModeLine:
		ed.draft = draftLine
		ed.line = DrawingLine{
			ID:       uuid.NewString(),
			Points:   []Point{p},
			Color:    ed.color,
			LineType: ed.lineType,
		}
	case ModeShape:
		ed.draft = draftShape
		ed.shapeStart = p
		ed.shape = PlayShape{
			ID:        uuid.NewString(),
			ShapeType: ed.shapeType,
			X:         p.X,
			Y:         p.Y,
			Color:     ed.color,
		}
	default:
		ed.pointerDownSelect(p)
	}
}

func (ed *Editor) pointerDownSelect(p Point) {
	hit := ed.scene.HitTest(p)
	switch hit.Kind {
	case HitElement:
		ed.selection = Selection{Kind: SelectElement, ID: hit.ID}
		e, _ := ed.scene.Element(hit.ID)
		ed.beginDrag(hit, Point{X: e.X - p.X, Y: e.Y - p.Y})
	case HitRoutePoint:
		ed.selection = Selection{Kind: SelectRoute, ID: hit.ID}
		r, _ := ed.scene.Route(hit.ID)
		pt := r.Points[hit.PointIndex]
		ed.beginDrag(hit, Point{X: pt.X - p.X, Y: pt.Y - p.Y})
	case HitLine:
		ed.selection = Selection{Kind: SelectLine, ID: hit.ID}
	case HitShape:
		ed.selection = Selection{Kind: SelectShape, ID: hit.ID}
	default:
		ed.selection = Selection{}
	}
}

func (ed *Editor) beginDrag(hit Hit, offset Point) {
	ed.draft = draftDrag
	ed.drag = dragTarget{hit: hit, offset: offset}
}

// PointerMove advances the active interaction. Dragging repositions the
// dragged entity; a line draft records a point once the pointer has moved
// past the threshold; a shape draft is resized around the start corner.
func (ed *Editor) PointerMove(p Point) {
	switch ed.draft {
	case draftDrag:
		target := Point{X: p.X + ed.drag.offset.X, Y: p.Y + ed.drag.offset.Y}
		switch ed.drag.hit.Kind {
		case HitElement:
			_ = ed.scene.MoveElement(ed.drag.hit.ID, target)
		case HitRoutePoint:
			_ = ed.scene.MoveRoutePoint(ed.drag.hit.ID, ed.drag.hit.PointIndex, target)
		}
	case draftLine:
		last := ed.line.Points[len(ed.line.Points)-1]
		if distance(last, p) > moveThreshold {
			ed.line.Points = append(ed.line.Points, p)
		}
	case draftShape:
		mid := midpoint(ed.shapeStart, p)
		ed.shape.X = mid.X
		ed.shape.Y = mid.Y
		ed.shape.Width = abs(p.X - ed.shapeStart.X)
		ed.shape.Height = abs(p.Y - ed.shapeStart.Y)
	}
}

// PointerUp ends the active interaction, committing drafts that meet the
// minimum size rules and discarding the rest. Drags never create or delete
// entities.
func (ed *Editor) PointerUp() {
	switch ed.draft {
	case draftLine:
		if len(ed.line.Points) >= 2 {
			ed.scene.addLine(ed.line)
		}
	case draftShape:
		if ed.shape.Width > 1 && ed.shape.Height > 1 {
			ed.scene.addShape(ed.shape)
		}
	}
	ed.discardDraft()
}

// PointerLeave is treated as PointerUp: leaving the canvas ends the gesture.
func (ed *Editor) PointerLeave() { ed.PointerUp() }

// ClearSelection deselects everything.
func (ed *Editor) ClearSelection() { ed.selection = Selection{} }

// DeleteSelected removes the selected entity from the scene. Deleting an
// element cascades to its routes. Returns true if anything was deleted.
func (ed *Editor) DeleteSelected() bool {
	var err error
	switch ed.selection.Kind {
	case SelectElement:
		err = ed.scene.RemoveElement(ed.selection.ID)
	case SelectRoute:
		err = ed.scene.RemoveRoute(ed.selection.ID)
	case SelectLine:
		err = ed.scene.RemoveLine(ed.selection.ID)
	case SelectShape:
		err = ed.scene.RemoveShape(ed.selection.ID)
	default:
		return false
	}
	ed.selection = Selection{}
	return err == nil
}

// Reset discards any draft and selection, e.g. when the editor unmounts.
func (ed *Editor) Reset() {
	ed.discardDraft()
	ed.selection = Selection{}
}

func (ed *Editor) discardDraft() {
	ed.draft = draftNone
	ed.line = DrawingLine{}
	ed.shape = PlayShape{}
	ed.drag = dragTarget{}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
