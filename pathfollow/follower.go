package pathfollow

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/dualarm/logging"
)

// default follower options.
const (
	defaultLookahead  = 0.3
	defaultEdgeCutoff = 0.3
)

// FollowerOptions are the per-tick defaults used by Follower.Step.
type FollowerOptions struct {
	// Lookahead is how far ahead along the path the target is placed.
	Lookahead float64
	// EdgeCutoff is how close to the next waypoint the configuration must be for the cursor to advance.
	EdgeCutoff float64
}

// DefaultFollowerOptions returns the options used when nothing else is configured.
func DefaultFollowerOptions() FollowerOptions {
	return FollowerOptions{Lookahead: defaultLookahead, EdgeCutoff: defaultEdgeCutoff}
}

func (opts FollowerOptions) validate() error {
	var err error
	if !(opts.Lookahead > 0) {
		err = multierr.Append(err, errors.Errorf("lookahead must be positive, got %v", opts.Lookahead))
	}
	if !(opts.EdgeCutoff > 0) {
		err = multierr.Append(err, errors.Errorf("edge cutoff must be positive, got %v", opts.EdgeCutoff))
	}
	return err
}

// Follower tracks progress along a Path. The cursor is the index of the edge being followed; it starts at 0,
// never decreases and never exceeds NumEdges()-1. A Follower has a single writer: the control loop calls
// UpdateCurrentEdge at most once per tick.
type Follower struct {
	path   *Path
	opts   FollowerOptions
	cursor int
	logger logging.Logger
}

// NewFollower returns a follower at the start of path.
func NewFollower(path *Path, opts FollowerOptions, logger logging.Logger) (*Follower, error) {
	if path == nil {
		return nil, errors.New("follower requires a path")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Follower{path: path, opts: opts, logger: logger}, nil
}

// Path returns the followed path.
func (f *Follower) Path() *Path {
	return f.path
}

// CurrentEdge returns the cursor.
func (f *Follower) CurrentEdge() int {
	return f.cursor
}

// LookaheadConfig returns the target lookahead ahead of conf's projection on the path, no farther than lookahead
// from conf. Only a path without edges returns its final waypoint unconditionally; on the last edge the walk
// stops at the final waypoint and the target is still clamped to within lookahead of conf.
func (f *Follower) LookaheadConfig(conf []float64, lookahead float64) ([]float64, error) {
	target, _, _, err := f.LookaheadData(conf, lookahead)
	return target, err
}

// LookaheadData is LookaheadConfig that also returns the edge and fraction reached by walking lookahead along
// the path. The returned target is clamped toward conf; Path.PointAt(edge, t) recovers the unclamped point,
// which lets a second robot follow a parallel path in step.
func (f *Follower) LookaheadData(conf []float64, lookahead float64) (target []float64, edge int, t float64, err error) {
	if err := f.path.checkDim(conf); err != nil {
		return nil, 0, 0, err
	}
	if !(lookahead > 0) {
		return nil, 0, 0, errors.Errorf("lookahead must be positive, got %v", lookahead)
	}
	if f.path.NumEdges() == 0 {
		return f.path.Last(), 0, 1, nil
	}

	edge = f.cursor
	t = EdgeProjection(conf, f.path.Edge(edge)).T
	remaining := lookahead
	for {
		length := f.path.Edge(edge).Length()
		left := (1 - t) * length
		if length > degenerateEdgeLength && remaining <= left {
			t += remaining / length
			break
		}
		if length > degenerateEdgeLength {
			remaining -= left
		}
		if edge == f.path.NumEdges()-1 {
			t = 1
			break
		}
		edge++
		t = 0
	}
	return ClampTarget(conf, f.path.PointAt(edge, t), lookahead), edge, t, nil
}

// UpdateCurrentEdge advances the cursor by one if conf is within cutoff of the next waypoint and the cursor is
// not already on the last edge. It reports whether the cursor moved.
func (f *Follower) UpdateCurrentEdge(conf []float64, cutoff float64) (bool, error) {
	if err := f.path.checkDim(conf); err != nil {
		return false, err
	}
	if f.cursor >= f.path.NumEdges()-1 {
		return false, nil
	}
	if floats.Distance(conf, f.path.waypoints[f.cursor+1], 2) >= cutoff {
		return false, nil
	}
	f.cursor++
	f.logger.Debugw("advanced to next edge", "edge", f.cursor, "edges", f.path.NumEdges())
	return true, nil
}

// Step runs one control tick with the configured options: it computes the lookahead target for conf, then
// updates the cursor.
func (f *Follower) Step(conf []float64) ([]float64, error) {
	target, err := f.LookaheadConfig(conf, f.opts.Lookahead)
	if err != nil {
		return nil, err
	}
	if _, err := f.UpdateCurrentEdge(conf, f.opts.EdgeCutoff); err != nil {
		return nil, err
	}
	return target, nil
}
