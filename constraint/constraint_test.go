package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/featherserver/actor"
)

func TestComputeRestitution(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected float64
	}{
		{"both zero", 0, 0, 0},
		{"one bouncy", 0, 0.8, 0.4},
		{"same", 0.5, 0.5, 0.5},
		{"both perfect", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRestitution(actor.Material{Restitution: tt.a}, actor.Material{Restitution: tt.b})
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("ComputeRestitution() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestComputeFriction(t *testing.T) {
	matA := actor.Material{StaticFriction: 0.4, DynamicFriction: 0.9}
	matB := actor.Material{StaticFriction: 0.9, DynamicFriction: 0.4}

	if got := ComputeStaticFriction(matA, matB); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("ComputeStaticFriction() = %v, want 0.6", got)
	}
	if got := ComputeDynamicFriction(matA, matB); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("ComputeDynamicFriction() = %v, want 0.6", got)
	}
	if got := ComputeStaticFriction(matA, actor.Material{}); got != 0 {
		t.Errorf("frictionless partner should cancel friction, got %v", got)
	}
}
