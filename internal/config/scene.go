package config

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Scene describes the objects of a single space for featherctl
type Scene struct {
	Frames int          `yaml:"frames"`
	Bodies []SceneBody  `yaml:"bodies"`
	Areas  []SceneArea  `yaml:"areas"`
	Joints []SceneJoint `yaml:"joints"`
}

type SceneShape struct {
	Type        string     `yaml:"type"` // sphere, box or plane
	Radius      float64    `yaml:"radius"`
	HalfExtents [3]float64 `yaml:"half_extents"`
	Normal      [3]float64 `yaml:"normal"`
	Distance    float64    `yaml:"distance"`
	Offset      [3]float64 `yaml:"offset"`
}

type SceneBody struct {
	Name     string       `yaml:"name"`
	Mode     string       `yaml:"mode"` // static, kinematic, rigid, rigid_linear
	Position [3]float64   `yaml:"position"`
	Velocity [3]float64   `yaml:"velocity"`
	Mass     float64      `yaml:"mass"`
	Bounce   float64      `yaml:"bounce"`
	Friction *float64     `yaml:"friction"`
	Layer    uint32       `yaml:"layer"`
	Mask     uint32       `yaml:"mask"`
	Shapes   []SceneShape `yaml:"shapes"`
}

type SceneArea struct {
	Name     string       `yaml:"name"`
	Position [3]float64   `yaml:"position"`
	Shapes   []SceneShape `yaml:"shapes"`
}

type SceneJoint struct {
	Type   string     `yaml:"type"` // pin
	BodyA  string     `yaml:"body_a"`
	BodyB  string     `yaml:"body_b"` // empty anchors to the world
	LocalA [3]float64 `yaml:"local_a"`
	LocalB [3]float64 `yaml:"local_b"`
	// NoCollide disables collision between the two bodies
	NoCollide bool `yaml:"no_collide"`
}

func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scene := &Scene{}
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

func (s *Scene) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	names := make(map[string]bool, len(s.Bodies))
	for i, b := range s.Bodies {
		if b.Name == "" {
			fail("bodies[%d]: missing name", i)
		} else if names[b.Name] {
			fail("bodies[%d]: duplicate name %q", i, b.Name)
		}
		names[b.Name] = true

		switch b.Mode {
		case "", "static", "kinematic", "rigid", "rigid_linear":
		default:
			fail("body %q: unknown mode %q", b.Name, b.Mode)
		}
		for j, shape := range b.Shapes {
			if e := shape.validate(); e != nil {
				fail("body %q shape %d: %v", b.Name, j, e)
			}
		}
	}

	for i, a := range s.Areas {
		for j, shape := range a.Shapes {
			if e := shape.validate(); e != nil {
				fail("areas[%d] shape %d: %v", i, j, e)
			}
		}
	}

	for i, j := range s.Joints {
		if j.Type != "pin" {
			fail("joints[%d]: unsupported type %q", i, j.Type)
		}
		if !names[j.BodyA] {
			fail("joints[%d]: unknown body_a %q", i, j.BodyA)
		}
		if j.BodyB != "" && !names[j.BodyB] {
			fail("joints[%d]: unknown body_b %q", i, j.BodyB)
		}
	}

	return err
}

func (s SceneShape) validate() error {
	switch s.Type {
	case "sphere":
		if s.Radius <= 0 {
			return fmt.Errorf("radius %v", s.Radius)
		}
	case "box":
		if s.HalfExtents[0] <= 0 || s.HalfExtents[1] <= 0 || s.HalfExtents[2] <= 0 {
			return fmt.Errorf("half extents %v", s.HalfExtents)
		}
	case "plane":
		if s.Normal == [3]float64{} {
			return fmt.Errorf("zero normal")
		}
	default:
		return fmt.Errorf("unknown type %q", s.Type)
	}
	return nil
}
