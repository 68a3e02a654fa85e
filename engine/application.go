package engine

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/math"
)

const (
	defaultSceneFile        = "assets/scenes/playground.toml"
	defaultOutputFile       = "out/playground.obj"
	defaultMaxGeometryCount = 4096
	maxWorkersPerCPU        = 4
)

type ApplicationConfig struct {
	// The application name, used in log output.
	Name string `toml:"name"`
	// One of debug, info, warn, error or fatal.
	LogLevel string `toml:"log_level"`
	// Path to the scene file to mesh.
	Scene string `toml:"scene"`
	// Path of the OBJ file to write. Empty disables the export.
	Output string `toml:"output"`
	// Number of build workers. 0 selects one per CPU.
	Workers int `toml:"workers"`
	// Max number of geometries alive at once.
	MaxGeometryCount uint32 `toml:"max_geometry_count"`
	// One of flat, smooth or smooth-weighted.
	Normals string `toml:"normals"`
	// Merge identical vertices after normals are generated.
	Weld bool `toml:"weld"`
	// Rebuild every time the scene file changes.
	Watch bool `toml:"watch"`
}

// DefaultApplicationConfig returns the configuration used for every key a
// config file leaves out.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:             "Anima Cubes",
		LogLevel:         "info",
		Scene:            defaultSceneFile,
		Output:           defaultOutputFile,
		Workers:          0,
		MaxGeometryCount: defaultMaxGeometryCount,
		Normals:          math.NormalPolicyFlat.String(),
	}
}

// LoadApplicationConfig reads the TOML file at path on top of the defaults.
// An empty path returns the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application config: %w", err)
	}
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse application config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid application config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the enumerated settings and normalizes the numeric ones.
func (c *ApplicationConfig) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.NormalPolicy(); err != nil {
		return err
	}
	if c.Scene == "" {
		return fmt.Errorf("scene must be set")
	}
	if c.MaxGeometryCount == 0 {
		c.MaxGeometryCount = defaultMaxGeometryCount
	}
	c.Workers = c.workerCount()
	return nil
}

func (c *ApplicationConfig) Level() (core.LogLevel, error) {
	return core.ParseLogLevel(c.LogLevel)
}

func (c *ApplicationConfig) NormalPolicy() (math.NormalPolicy, error) {
	return math.ParseNormalPolicy(c.Normals)
}

func (c *ApplicationConfig) workerCount() int {
	cpus := runtime.NumCPU()
	if c.Workers <= 0 {
		return cpus
	}
	return math.Clamp(c.Workers, 1, cpus*maxWorkersPerCPU)
}
