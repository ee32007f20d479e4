package geometry

import (
	"math"
	"strconv"
	"strings"
)

// curvature is the fraction of the vertical distance used to offset both
// control points, giving a vertically biased S-curve.
const curvature = 0.3

// hitSamples is the number of segments used to approximate a path when
// measuring distance to it.
const hitSamples = 32

// Path is a single cubic bezier segment from Start to End.
type Path struct {
	Start Point `json:"start"`
	C1    Point `json:"c1"`
	C2    Point `json:"c2"`
	End   Point `json:"end"`
}

// SmoothPath builds the connection curve between two ports. Control points
// keep the endpoints' x and are pushed 0.3*|dy| down from the start and up
// from the end. When y1 == y2 the curve collapses to a straight line.
func SmoothPath(x1, y1, x2, y2 float64) Path {
	k := curvature * math.Abs(y2-y1)
	return Path{
		Start: Point{X: x1, Y: y1},
		C1:    Point{X: x1, Y: y1 + k},
		C2:    Point{X: x2, Y: y2 - k},
		End:   Point{X: x2, Y: y2},
	}
}

// SmoothPathBetween is SmoothPath for two points.
func SmoothPathBetween(from, to Point) Path {
	return SmoothPath(from.X, from.Y, to.X, to.Y)
}

// String renders the SVG path data, e.g. "M 0 0 C 0 3, 10 7, 10 10".
// Output is byte-stable for identical inputs.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, p.Start)
	b.WriteString(" C ")
	writePoint(&b, p.C1)
	b.WriteString(", ")
	writePoint(&b, p.C2)
	b.WriteString(", ")
	writePoint(&b, p.End)
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(formatFloat(p.X))
	b.WriteByte(' ')
	b.WriteString(formatFloat(p.Y))
}

func formatFloat(f float64) string {
	if f == 0 {
		// avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// At evaluates the curve at t in [0, 1].
func (p Path) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p.Start.X + b*p.C1.X + c*p.C2.X + d*p.End.X,
		Y: a*p.Start.Y + b*p.C1.Y + c*p.C2.Y + d*p.End.Y,
	}
}

// Distance approximates the shortest distance from q to the curve by
// flattening it into line segments.
func (p Path) Distance(q Point) float64 {
	best := math.Inf(1)
	prev := p.Start
	for i := 1; i <= hitSamples; i++ {
		cur := p.At(float64(i) / hitSamples)
		if d := segmentDistance(q, prev, cur); d < best {
			best = d
		}
		prev = cur
	}
	return best
}

// Midpoint returns the point halfway along the curve parameter.
func (p Path) Midpoint() Point { return p.At(0.5) }

func segmentDistance(q, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return q.Dist(a)
	}
	t := ((q.X-a.X)*ab.X + (q.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return q.Dist(a.Add(ab.Scale(t)))
}
