package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/akmonengine/featherserver/actor"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNoFactory        = errors.New("engine: no shape factory installed")
	ErrUnknownShapeType = errors.New("engine: unknown shape type")
	ErrInvalidShape     = errors.New("engine: invalid shape parameters")
)

// ShapeParams is the union of the parameters of every buildable shape
type ShapeParams struct {
	Radius      float64
	HalfExtents mgl64.Vec3
	Normal      mgl64.Vec3
	Distance    float64
}

type ShapeBuilder func(params ShapeParams) (actor.Shape, error)

// Factory maps shape types to their builders
type Factory struct {
	mu       sync.RWMutex
	builders map[actor.ShapeType]ShapeBuilder
}

var factory atomic.Pointer[Factory]

func NewFactory() *Factory {
	return &Factory{builders: make(map[actor.ShapeType]ShapeBuilder)}
}

// SetFactory installs the process-wide factory; nil removes it
func SetFactory(f *Factory) {
	factory.Store(f)
}

func CurrentFactory() *Factory {
	return factory.Load()
}

func (f *Factory) Register(shapeType actor.ShapeType, builder ShapeBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[shapeType] = builder
}

func (f *Factory) Build(shapeType actor.ShapeType, params ShapeParams) (actor.Shape, error) {
	f.mu.RLock()
	builder, ok := f.builders[shapeType]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShapeType, shapeType)
	}

	return builder(params)
}

// BuildShape uses the installed factory
func BuildShape(shapeType actor.ShapeType, params ShapeParams) (actor.Shape, error) {
	f := CurrentFactory()
	if f == nil {
		return nil, ErrNoFactory
	}
	return f.Build(shapeType, params)
}

// RegisterTypes registers the primitive shapes
func RegisterTypes(f *Factory) {
	f.Register(actor.ShapeTypeSphere, func(p ShapeParams) (actor.Shape, error) {
		if p.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere radius %v", ErrInvalidShape, p.Radius)
		}
		return &actor.Sphere{Radius: p.Radius}, nil
	})
	f.Register(actor.ShapeTypeBox, func(p ShapeParams) (actor.Shape, error) {
		if p.HalfExtents.X() <= 0 || p.HalfExtents.Y() <= 0 || p.HalfExtents.Z() <= 0 {
			return nil, fmt.Errorf("%w: box half extents %v", ErrInvalidShape, p.HalfExtents)
		}
		return &actor.Box{HalfExtents: p.HalfExtents}, nil
	})
	f.Register(actor.ShapeTypePlane, func(p ShapeParams) (actor.Shape, error) {
		if p.Normal.Len() < 1e-9 {
			return nil, fmt.Errorf("%w: plane normal %v", ErrInvalidShape, p.Normal)
		}
		return &actor.Plane{Normal: p.Normal.Normalize(), Distance: p.Distance}, nil
	})
}
