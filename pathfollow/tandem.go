package pathfollow

import (
	"github.com/pkg/errors"

	"go.viam.com/dualarm/logging"
)

// TandemOptions configures a Tandem.
type TandemOptions struct {
	FollowerOptions
	// MaxStep bounds how far either robot's commanded configuration may be from its current one per tick.
	MaxStep float64
}

// DefaultTandemOptions returns slow, conservative settings for two arms sharing a workspace.
func DefaultTandemOptions() TandemOptions {
	return TandemOptions{
		FollowerOptions: FollowerOptions{Lookahead: 0.1, EdgeCutoff: 0.05},
		MaxStep:         0.1,
	}
}

// Tandem drives two robots along parallel paths with the same number of waypoints. The leader follows its path
// with a lookahead that shrinks while the other robot lags its target; the other robot is commanded to the point
// on its own path matching where the leader's lookahead landed on the previous tick.
type Tandem struct {
	leader    *Follower
	other     *Path
	maxStep   float64
	lookahead float64
	cutoff    float64
	edge      int
	t         float64
}

// NewTandem pairs a leader path with the other robot's path.
func NewTandem(leader, other *Path, opts TandemOptions, logger logging.Logger) (*Tandem, error) {
	if leader == nil || other == nil {
		return nil, errors.New("tandem requires two paths")
	}
	if leader.Len() != other.Len() {
		return nil, errors.Errorf("tandem paths must have the same number of waypoints, got %d and %d", leader.Len(), other.Len())
	}
	if !(opts.MaxStep > 0) {
		return nil, errors.Errorf("max step must be positive, got %v", opts.MaxStep)
	}
	follower, err := NewFollower(leader, opts.FollowerOptions, logger)
	if err != nil {
		return nil, err
	}
	return &Tandem{
		leader:    follower,
		other:     other,
		maxStep:   opts.MaxStep,
		lookahead: opts.Lookahead,
		cutoff:    opts.EdgeCutoff,
	}, nil
}

// Leader returns the leader's follower.
func (td *Tandem) Leader() *Follower {
	return td.leader
}

// Step computes one tick of commands from both robots' current configurations.
func (td *Tandem) Step(leaderConf, otherConf []float64) (leaderCmd, otherCmd []float64, err error) {
	if err := td.other.checkDim(otherConf); err != nil {
		return nil, nil, err
	}
	otherCmd = ClampTarget(otherConf, td.other.PointAt(td.edge, td.t), td.maxStep)
	lookahead := ShortenLookahead(td.lookahead, otherConf, otherCmd)

	var target []float64
	if lookahead > 0 {
		target, td.edge, td.t, err = td.leader.LookaheadData(leaderConf, lookahead)
		if err != nil {
			return nil, nil, err
		}
	} else {
		target = append([]float64(nil), leaderConf...)
	}
	if _, err := td.leader.UpdateCurrentEdge(leaderConf, td.cutoff); err != nil {
		return nil, nil, err
	}
	return ClampTarget(leaderConf, target, td.maxStep), otherCmd, nil
}
