// Package pathfollow tracks a piecewise-linear path of configurations with a pure-pursuit lookahead and a
// cursor that only ever moves forward along the path's edges.
package pathfollow

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/dualarm/utils"
)

// degenerateEdgeLength is the length at or below which an edge is treated as a single point.
const degenerateEdgeLength = 1e-3

// Edge is a straight segment between two consecutive waypoints.
type Edge struct {
	From []float64
	To   []float64
}

// Length returns the Euclidean length of the edge.
func (e Edge) Length() float64 {
	return floats.Distance(e.From, e.To, 2)
}

// Path is an immutable sequence of one or more waypoints of equal dimension.
type Path struct {
	waypoints [][]float64
}

// NewPath copies and validates waypoints.
func NewPath(waypoints [][]float64) (*Path, error) {
	if len(waypoints) == 0 {
		return nil, errors.New("path needs at least one waypoint")
	}
	dim := len(waypoints[0])
	if dim == 0 {
		return nil, errors.New("path waypoints must not be empty")
	}
	copied := make([][]float64, len(waypoints))
	for i, wp := range waypoints {
		if len(wp) != dim {
			return nil, errors.Errorf("waypoint %d has dimension %d, expected %d", i, len(wp), dim)
		}
		for _, v := range wp {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Errorf("waypoint %d is not finite", i)
			}
		}
		copied[i] = append([]float64(nil), wp...)
	}
	return &Path{waypoints: copied}, nil
}

// Len returns the number of waypoints.
func (p *Path) Len() int {
	return len(p.waypoints)
}

// Dim returns the dimension of each waypoint.
func (p *Path) Dim() int {
	return len(p.waypoints[0])
}

// Waypoint returns a copy of waypoint i.
func (p *Path) Waypoint(i int) []float64 {
	return append([]float64(nil), p.waypoints[i]...)
}

// Last returns a copy of the final waypoint.
func (p *Path) Last() []float64 {
	return p.Waypoint(len(p.waypoints) - 1)
}

// NumEdges returns Len()-1.
func (p *Path) NumEdges() int {
	return len(p.waypoints) - 1
}

// Edge returns edge i, from waypoint i to waypoint i+1. The endpoints alias the path and must not be modified.
func (p *Path) Edge(i int) Edge {
	return Edge{From: p.waypoints[i], To: p.waypoints[i+1]}
}

// Edges returns every edge in order.
func (p *Path) Edges() []Edge {
	edges := make([]Edge, 0, p.NumEdges())
	for i := 0; i < p.NumEdges(); i++ {
		edges = append(edges, p.Edge(i))
	}
	return edges
}

// PointAt interpolates fraction t of edge. An edge index past the end yields the final waypoint.
func (p *Path) PointAt(edge int, t float64) []float64 {
	if edge >= p.NumEdges() {
		return p.Last()
	}
	e := p.Edge(edge)
	return lerp(e.From, e.To, t)
}

func (p *Path) checkDim(conf []float64) error {
	if len(conf) != p.Dim() {
		return errors.Errorf("configuration has dimension %d but the path has dimension %d", len(conf), p.Dim())
	}
	return nil
}

// Projection is the closest point on an edge to some configuration.
type Projection struct {
	Point []float64
	// T is the fraction along the edge, in [0, 1].
	T float64
	// ArcLength is the distance from the edge start, in [0, edge length].
	ArcLength float64
}

// EdgeProjection projects conf onto edge. A degenerate edge projects to its end point with T = 1.
// conf must have the edge's dimension.
func EdgeProjection(conf []float64, edge Edge) Projection {
	length := edge.Length()
	if length <= degenerateEdgeLength {
		return Projection{Point: append([]float64(nil), edge.To...), T: 1, ArcLength: length}
	}
	dir := floats.SubTo(make([]float64, len(edge.To)), edge.To, edge.From)
	rel := floats.SubTo(make([]float64, len(conf)), conf, edge.From)
	arc := utils.Clamp(floats.Dot(dir, rel)/length, 0, length)
	t := arc / length
	return Projection{Point: lerp(edge.From, edge.To, t), T: t, ArcLength: arc}
}

// ClampTarget moves target toward current so that it is at most maxStep away.
func ClampTarget(current, target []float64, maxStep float64) []float64 {
	dist := floats.Distance(current, target, 2)
	if dist <= maxStep {
		return append([]float64(nil), target...)
	}
	out := floats.SubTo(make([]float64, len(target)), target, current)
	floats.Scale(maxStep/dist, out)
	floats.Add(out, current)
	return out
}

// ShortenLookahead reduces lookahead as the other robot falls behind its own target, so a leader waits for its
// follower. The result is in [0, lookahead].
func ShortenLookahead(lookahead float64, otherLoc, otherTarget []float64) float64 {
	d := floats.Distance(otherLoc, otherTarget, 2)
	shorten := 0.75 / (d*d + 0.001)
	return utils.Clamp(shorten*lookahead, 0, lookahead)
}

// lerp returns (1-t)*a + t*b in a new slice.
func lerp(a, b []float64, t float64) []float64 {
	out := make([]float64, len(a))
	floats.AddScaledTo(out, a, t, floats.SubTo(make([]float64, len(b)), b, a))
	return out
}
