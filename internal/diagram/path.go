package diagram

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Zigzag geometry: subdivision length divisor, minimum subdivision count,
// and perpendicular amplitude, all in field units.
const (
	zigLength    = 3.0
	zigMin       = 2
	zigAmplitude = 1.5
)

// DashPattern is the stroke-dasharray applied to dashed lines and routes.
// Dashing is a stroke property; it never changes path geometry.
const DashPattern = "2,1"

// Path renders a drawing line's points into an SVG path description,
// dispatching on line type. Lines with fewer than two points produce an
// empty path (they are never committed to a scene, but stored documents are
// not trusted).
func Path(line DrawingLine) string {
	if len(line.Points) < 2 {
		return ""
	}
	switch line.LineType {
	case LineCurved:
		return curvedPath(line.Points)
	case LineZigzag:
		return zigzagPath(line.Points)
	case LineRoute, LineBlock, LineSolid, LineDashed:
		return straightPath(line.Points)
	default:
		return straightPath(line.Points)
	}
}

// straightPath joins the points with line segments.
func straightPath(pts []Point) string {
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(coords(pts[0]))
	for _, p := range pts[1:] {
		b.WriteString(" L ")
		b.WriteString(coords(p))
	}
	return b.String()
}

// curvedPath smooths the polyline: each consecutive pair becomes a
// quadratic curve using the previous point as control and the pair midpoint
// as end, with a closing straight segment to the final point.
func curvedPath(pts []Point) string {
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(coords(pts[0]))
	for i := 1; i < len(pts); i++ {
		mid := midpoint(pts[i-1], pts[i])
		b.WriteString(" Q ")
		b.WriteString(coords(pts[i-1]))
		b.WriteString(" ")
		b.WriteString(coords(mid))
	}
	b.WriteString(" L ")
	b.WriteString(coords(pts[len(pts)-1]))
	return b.String()
}

// zigzagPath subdivides each segment into max(2, floor(len/3)) steps and
// alternates a ±1.5 unit perpendicular offset, landing exactly on the
// segment end for the final step.
func zigzagPath(pts []Point) string {
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(coords(pts[0]))
	for i := 0; i+1 < len(pts); i++ {
		start, end := pts[i], pts[i+1]
		segLen := distance(start, end)
		if segLen == 0 {
			continue
		}
		numZigs := int(math.Floor(segLen / zigLength))
		if numZigs < zigMin {
			numZigs = zigMin
		}
		// Unit perpendicular to the segment.
		px := -(end.Y - start.Y) / segLen
		py := (end.X - start.X) / segLen
		for j := 1; j <= numZigs; j++ {
			t := float64(j) / float64(numZigs)
			p := Point{
				X: start.X + t*(end.X-start.X),
				Y: start.Y + t*(end.Y-start.Y),
			}
			if j < numZigs {
				offset := zigAmplitude
				if j%2 == 0 {
					offset = -zigAmplitude
				}
				p.X += px * offset
				p.Y += py * offset
			}
			b.WriteString(" L ")
			b.WriteString(coords(p))
		}
	}
	return b.String()
}

func coords(p Point) string {
	return num(p.X) + " " + num(p.Y)
}

// num formats a coordinate rounded to hundredths, without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// MarkerKind is a terminal marker style.
type MarkerKind int

const (
	MarkerNone MarkerKind = iota
	MarkerArrow
	MarkerTBar
)

// MarkerFor returns the terminal marker kind for a line type. Route,
// curved, solid and dashed lines end in an arrowhead; block lines end in a
// T-bar; zigzag lines have no terminal marker.
func MarkerFor(t LineType) MarkerKind {
	switch t {
	case LineRoute, LineCurved, LineSolid, LineDashed:
		return MarkerArrow
	case LineBlock:
		return MarkerTBar
	default:
		return MarkerNone
	}
}

// MarkerID returns the marker definition id for a line, or "" when the line
// type takes no marker. SVG markers cannot inherit stroke color, so each
// distinct color needs its own definition and the id embeds the color.
func MarkerID(t LineType, color string) string {
	switch MarkerFor(t) {
	case MarkerArrow:
		return "arrow-" + colorKey(color)
	case MarkerTBar:
		return "tbar-" + colorKey(color)
	default:
		return ""
	}
}

// MarkerDefs renders the <marker> definitions needed by a set of lines, one
// per distinct (kind, color) pair, in first-use order.
func MarkerDefs(lines []DrawingLine) string {
	var b strings.Builder
	seen := make(map[string]struct{})
	for _, l := range lines {
		id := MarkerID(l.LineType, l.Color)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		switch MarkerFor(l.LineType) {
		case MarkerArrow:
			fmt.Fprintf(&b,
				`<marker id=%q markerWidth="6" markerHeight="6" refX="5" refY="3" orient="auto"><path d="M 0 0 L 6 3 L 0 6 z" fill=%q/></marker>`,
				id, l.Color)
		case MarkerTBar:
			fmt.Fprintf(&b,
				`<marker id=%q markerWidth="6" markerHeight="6" refX="3" refY="3" orient="auto"><path d="M 3 0 L 3 6" stroke=%q stroke-width="1.5"/></marker>`,
				id, l.Color)
		}
	}
	return b.String()
}

// colorKey makes a color string safe for use inside a marker id.
func colorKey(color string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(color) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
