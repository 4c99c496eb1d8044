package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/dualarm/kinematics"
	"go.viam.com/dualarm/logging"
	"go.viam.com/dualarm/motionplan"
	"go.viam.com/dualarm/referenceframe"
	"go.viam.com/dualarm/robots/universalrobots"
	spatial "go.viam.com/dualarm/spatialmath"
)

const (
	// Flags.
	flagModel    = "model"
	flagDebug    = "debug"
	flagJoints   = "joints"
	flagPoint    = "point"
	flagEuler    = "euler"
	flagLocal    = "local"
	flagTool     = "tool"
	flagObstacle = "obstacle"
	flagPlan     = "plan"
)

type runner struct {
	logger logging.Logger
	out    io.Writer
}

func newApp() *cli.App {
	r := &runner{logger: logging.NewBlankLogger("armkin")}
	jointsFlag := &cli.Float64SliceFlag{
		Name:     flagJoints,
		Aliases:  []string{"j"},
		Usage:    "six joint angles in radians, comma separated",
		Required: true,
	}
	return &cli.App{
		Name:  "armkin",
		Usage: "inspect arm kinematics and collision models",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagModel,
				Aliases: []string{"m"},
				Value:   universalrobots.UR5eModelName,
				Usage:   "built-in model name (ur5e, ur3e) or path to a model `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			r.out = c.App.Writer
			if c.Bool(flagDebug) {
				r.logger = logging.NewDebugLogger("armkin")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "fk",
				Usage:  "print the end-effector pose for a joint configuration",
				Flags:  []cli.Flag{jointsFlag},
				Action: r.forward,
			},
			{
				Name:  "ik",
				Usage: "solve for joint configurations reaching a point and orientation in the robot base frame",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{Name: flagPoint, Usage: "x,y,z in meters", Required: true},
					&cli.Float64SliceFlag{Name: flagEuler, Usage: "alpha,beta,gamma in radians (Rz*Ry*Rx); defaults to tool down"},
				},
				Action: r.inverse,
			},
			{
				Name:  "world",
				Usage: "map a point in end-effector or tool coordinates into the world frame",
				Flags: []cli.Flag{
					jointsFlag,
					&cli.Float64SliceFlag{Name: flagLocal, Usage: "x,y,z or x,y,z,1"},
					&cli.StringFlag{Name: flagTool, Usage: "measure local from this tool's origin"},
				},
				Action: r.world,
			},
			{
				Name:  "collide",
				Usage: "check a joint configuration for collisions",
				Flags: []cli.Flag{
					jointsFlag,
					&cli.StringSliceFlag{Name: flagObstacle, Usage: "world-frame obstacle sphere as x:y:z:radius, repeatable"},
				},
				Action: r.collide,
			},
			{
				Name:  "check-plan",
				Usage: "validate every edge of a joint-space plan and print its cost",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagPlan, Usage: "JSON `FILE` holding a list of six-joint waypoints", Required: true},
					&cli.StringSliceFlag{Name: flagObstacle, Usage: "world-frame obstacle sphere as x:y:z:radius, repeatable"},
				},
				Action: r.checkPlan,
			},
		},
	}
}

func (r *runner) loadModel(c *cli.Context) (*referenceframe.Model, motionplan.CollisionPolicy, error) {
	name := c.String(flagModel)
	if strings.EqualFold(filepath.Ext(name), ".json") {
		model, err := referenceframe.ParseModelFile(name, "")
		if err != nil {
			return nil, motionplan.CollisionPolicy{}, err
		}
		return model, universalrobots.CollisionPolicy(model.Name()), nil
	}
	model, err := universalrobots.MakeModelFrame(name, "")
	if err != nil {
		return nil, motionplan.CollisionPolicy{}, err
	}
	return model, universalrobots.CollisionPolicy(name), nil
}

func joints(c *cli.Context) ([]referenceframe.Input, error) {
	vals := c.Float64Slice(flagJoints)
	if len(vals) != referenceframe.ArmDoF {
		return nil, referenceframe.NewIncorrectDoFError(len(vals), referenceframe.ArmDoF)
	}
	return referenceframe.FloatsToInputs(vals), nil
}

func (r *runner) forward(c *cli.Context) error {
	model, _, err := r.loadModel(c)
	if err != nil {
		return err
	}
	inputs, err := joints(c)
	if err != nil {
		return err
	}
	if err := model.CheckLimits(inputs); err != nil {
		r.logger.Warnw("joints outside limits", "error", err)
	}
	pose, err := kinematics.ComputePosition(model, inputs)
	if err != nil {
		return err
	}
	world := model.BaseToWorld().Compose(pose)
	printPose(r.out, "base", pose)
	printPoint(r.out, "world", world.Point())
	return nil
}

func (r *runner) inverse(c *cli.Context) error {
	model, _, err := r.loadModel(c)
	if err != nil {
		return err
	}
	pt := c.Float64Slice(flagPoint)
	if len(pt) != 3 {
		return referenceframe.NewIncorrectShapeError(flagPoint, len(pt), 3)
	}
	euler := c.Float64Slice(flagEuler)
	switch len(euler) {
	case 0:
		euler = []float64{-math.Pi, 0, 0}
	case 3:
	default:
		return referenceframe.NewIncorrectShapeError(flagEuler, len(euler), 3)
	}

	solver, err := kinematics.NewAnalyticSolver(model.DH(), kinematics.DefaultSolverOptions(), r.logger.Sublogger("ik"))
	if err != nil {
		return err
	}
	sols, err := solver.SolveForPoint(r3.Vector{X: pt[0], Y: pt[1], Z: pt[2]}, euler[0], euler[1], euler[2])
	if err != nil {
		return err
	}
	if len(sols) == 0 {
		fmt.Fprintln(r.out, "unreachable")
		return nil
	}
	for i, s := range sols {
		tag := "exact"
		if s.Approximated() {
			tag = "approximated"
		}
		fmt.Fprintf(r.out, "%d %s %s\n", i, formatFloats(referenceframe.InputsToFloats(s.Inputs)), tag)
	}
	return nil
}

func (r *runner) world(c *cli.Context) error {
	model, _, err := r.loadModel(c)
	if err != nil {
		return err
	}
	inputs, err := joints(c)
	if err != nil {
		return err
	}
	local := c.Float64Slice(flagLocal)
	if len(local) == 0 {
		local = []float64{0, 0, 0}
	}
	mount := kinematics.NewMount(model)

	var pt r3.Vector
	if tool := c.String(flagTool); tool != "" {
		if len(local) != 3 {
			return referenceframe.NewIncorrectShapeError(flagLocal, len(local), 3)
		}
		pt, err = mount.ToolPoint(inputs, tool, r3.Vector{X: local[0], Y: local[1], Z: local[2]})
	} else {
		pt, err = mount.EffectorToHome(inputs, local)
	}
	if err != nil {
		return err
	}
	printPoint(r.out, "world", pt)
	return nil
}

func (r *runner) collide(c *cli.Context) error {
	space, err := r.configurationSpace(c)
	if err != nil {
		return err
	}
	inputs, err := joints(c)
	if err != nil {
		return err
	}
	collision, err := space.CheckCollision(inputs)
	if err != nil {
		return err
	}
	if collision == nil {
		fmt.Fprintln(r.out, "free")
		return nil
	}
	fmt.Fprintln(r.out, collision.String())
	return nil
}

func (r *runner) checkPlan(c *cli.Context) error {
	space, err := r.configurationSpace(c)
	if err != nil {
		return err
	}
	//nolint:gosec
	data, err := os.ReadFile(c.Path(flagPlan))
	if err != nil {
		return errors.Wrap(err, "failed to read plan")
	}
	var waypoints [][]float64
	if err := json.Unmarshal(data, &waypoints); err != nil {
		return errors.Wrap(err, "failed to unmarshal plan")
	}
	plan := make(motionplan.Plan, 0, len(waypoints))
	for _, wp := range waypoints {
		plan = append(plan, referenceframe.FloatsToInputs(wp))
	}
	for i, wp := range plan {
		collision, err := space.CheckCollision(wp)
		if err != nil {
			return errors.Wrapf(err, "waypoint %d", i)
		}
		if collision != nil {
			return errors.Wrapf(motionplan.NewCollisionError(collision), "waypoint %d", i)
		}
	}
	if err := plan.Validate(space); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "valid, %d waypoints, cost %.6f\n", len(plan), plan.Evaluate(space.CostMetric()))
	return nil
}

func (r *runner) configurationSpace(c *cli.Context) (*motionplan.ConfigurationSpace, error) {
	model, policy, err := r.loadModel(c)
	if err != nil {
		return nil, err
	}
	obstacles, err := parseObstacles(c.StringSlice(flagObstacle))
	if err != nil {
		return nil, err
	}
	return motionplan.NewConfigurationSpace(model, obstacles, policy, motionplan.DefaultPlannerOptions(), r.logger.Sublogger("cspace"))
}

// parseObstacles reads spheres written as x:y:z:radius.
func parseObstacles(specs []string) ([]spatial.Sphere, error) {
	var err error
	spheres := make([]spatial.Sphere, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 4 {
			err = multierr.Append(err, errors.Errorf("obstacle %q must be x:y:z:radius", spec))
			continue
		}
		vals, pErr := parseFloats(parts)
		if pErr != nil {
			err = multierr.Append(err, errors.Wrapf(pErr, "obstacle %q", spec))
			continue
		}
		s, sErr := spatial.NewSphere(r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, vals[3])
		if sErr != nil {
			err = multierr.Append(err, sErr)
			continue
		}
		spheres = append(spheres, s)
	}
	if err != nil {
		return nil, err
	}
	return spheres, nil
}

func parseFloats(strs []string) ([]float64, error) {
	vals := make([]float64, len(strs))
	for i, str := range strs {
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func printPose(w io.Writer, label string, pose spatial.Pose) {
	fmt.Fprintf(w, "%s:\n", label)
	for row := 0; row < 4; row++ {
		vals := make([]float64, 4)
		for col := range vals {
			vals[col] = pose.At(row, col)
		}
		fmt.Fprintf(w, "  %s\n", formatFloats(vals))
	}
}

func printPoint(w io.Writer, label string, pt r3.Vector) {
	fmt.Fprintf(w, "%s: %s\n", label, formatFloats([]float64{pt.X, pt.Y, pt.Z}))
}

func formatFloats(vals []float64) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatFloat(v, 'f', 5, 64)
	}
	return "[" + strings.Join(strs, " ") + "]"
}
