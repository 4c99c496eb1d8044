package referenceframe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	spatial "go.viam.com/dualarm/spatialmath"
	"go.viam.com/dualarm/utils"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name         string          `json:"name"`
	KinParamType string          `json:"kinematic_param_type,omitempty"`
	DHParams     []DHParamConfig `json:"dhParams"`
	Tools        []ToolConfig    `json:"tools,omitempty"`
	Base         *BaseConfig     `json:"base,omitempty"`
}

// DHParamConfig is one DH row plus the limits and sphere geometry of the link it moves.
// Alpha is in radians, Min and Max in degrees.
type DHParamConfig struct {
	ID      string           `json:"id"`
	A       float64          `json:"a"`
	D       float64          `json:"d"`
	Alpha   float64          `json:"alpha"`
	Max     float64          `json:"max"`
	Min     float64          `json:"min"`
	Spheres []spatial.Sphere `json:"spheres,omitempty"`
}

// ToolConfig names a fixed point in the end-effector frame, e.g. a plate center or a camera focal point.
type ToolConfig struct {
	Name   string    `json:"name"`
	Offset r3.Vector `json:"offset"`
}

// BaseConfig places the robot base in the world frame. Euler angles are in radians, applied as Rz*Ry*Rx.
type BaseConfig struct {
	Translation r3.Vector `json:"translation"`
	Alpha       float64   `json:"alpha,omitempty"`
	Beta        float64   `json:"beta,omitempty"`
	Gamma       float64   `json:"gamma,omitempty"`
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*Model, error) {
	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}
	cfg := &ModelConfigJSON{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return cfg.ParseConfig(modelName)
}

// ParseModelFile reads a model JSON file from disk.
func ParseModelFile(path, modelName string) (*Model, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return nil, errors.Errorf("unsupported kinematic model encoding file extension: %s", ext)
	}
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read kinematics file")
	}
	return UnmarshalModelJSON(data, modelName)
}

// ModelFromAttributes decodes a loosely typed attribute map, as found in a component config, into a model.
func ModelFromAttributes(attrs map[string]interface{}, modelName string) (*Model, error) {
	if len(attrs) == 0 {
		return nil, ErrNoModelInformation
	}
	cfg := &ModelConfigJSON{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "failed to decode model attributes")
	}
	return cfg.ParseConfig(modelName)
}

// ParseConfig converts the ModelConfigJSON struct into a full Model with the name modelName.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (*Model, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	switch cfg.KinParamType {
	case "DH", "":
	default:
		return nil, errors.Errorf("unsupported param type: %s, supported params are DH", cfg.KinParamType)
	}
	if len(cfg.DHParams) != ArmDoF {
		return nil, NewIncorrectShapeError("dhParams", len(cfg.DHParams), ArmDoF)
	}

	var table DHTable
	limits := make([]Limit, 0, ArmDoF)
	spheres := make(SphereModel, 0, ArmDoF)
	for i, dh := range cfg.DHParams {
		table[i] = DHParam{A: dh.A, Alpha: dh.Alpha, D: dh.D}
		limits = append(limits, Limit{Min: utils.DegToRad(dh.Min), Max: utils.DegToRad(dh.Max)})
		spheres = append(spheres, LinkSpheres{Link: dh.ID, Spheres: dh.Spheres})
	}

	var err error
	tools := make(map[string]r3.Vector, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		if _, ok := tools[tool.Name]; ok {
			err = multierr.Append(err, NewDuplicateToolError(tool.Name))
			continue
		}
		tools[tool.Name] = tool.Offset
	}
	if err != nil {
		return nil, err
	}

	base := spatial.NewZeroPose()
	if cfg.Base != nil {
		base = spatial.NewPoseFromEuler(cfg.Base.Translation, cfg.Base.Alpha, cfg.Base.Beta, cfg.Base.Gamma)
	}
	return NewModel(modelName, table, limits, spheres, tools, base)
}
