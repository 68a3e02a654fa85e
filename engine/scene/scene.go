package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-cubes/engine/math"
)

// Cube is one unit cube of a scene file.
type Cube struct {
	Name     string    `toml:"name"`
	Position []float32 `toml:"position"`
	Material string    `toml:"material"`
}

// Scene is the content of a scene file.
type Scene struct {
	Name  string `toml:"name"`
	Cubes []Cube `toml:"cube"`
}

// Transform places the cube in the world.
func (c Cube) Transform() *math.Transform {
	return math.TransformFromPosition(math.NewVec3(c.Position[0], c.Position[1], c.Position[2]))
}

// Origin is the grid cell of the cube. Positions are truncated toward zero.
func (c Cube) Origin() math.IVec3 {
	return c.Transform().Origin()
}

// Load reads and validates the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scene. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	s := &Scene{}
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("invalid toml at %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("invalid toml: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scene) validate() error {
	names := make(map[string]int, len(s.Cubes))
	for i := range s.Cubes {
		c := &s.Cubes[i]
		if len(c.Position) != 3 {
			return fmt.Errorf("cube #%d: position needs 3 components, got %d", i, len(c.Position))
		}
		for axis, p := range c.Position {
			if !math.InGridRange(p) {
				return fmt.Errorf("cube #%d: position component %d (%v) is not finite or exceeds ±%d", i, axis, p, math.MaxGridCoordinate)
			}
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("cube-%d", i)
		}
		if prev, ok := names[c.Name]; ok {
			return fmt.Errorf("cube #%d: name %q already used by cube #%d", i, c.Name, prev)
		}
		names[c.Name] = i
	}
	return nil
}
