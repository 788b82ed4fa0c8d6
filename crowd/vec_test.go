package crowd

import (
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{-4, 0, 2}

	if got := a.Add(b); got != (Vec3{-3, 2, 5}) {
		t.Errorf("Add = %v, want {-3 2 5}", got)
	}
	if got := a.Sub(b); got != (Vec3{5, 2, 1}) {
		t.Errorf("Sub = %v, want {5 2 1}", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v, want {2 4 6}", got)
	}
	if got := a.LenSq(); got != 14 {
		t.Errorf("LenSq = %v, want 14", got)
	}
}

func TestVec3_Len(t *testing.T) {
	v := Vec3{3, 4, 0}
	if got := v.Len(); math.Abs(float64(got)-5) > 1e-6 {
		t.Errorf("Len = %v, want 5", got)
	}
}

func TestVec3_Normalized(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
	}{
		{"unit x", Vec3{1, 0, 0}},
		{"long diagonal", Vec3{10, -20, 5}},
		{"tiny", Vec3{0.001, 0.002, -0.001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.v.Normalized()
			if got := n.Len(); math.Abs(float64(got)-1) > 1e-4 {
				t.Errorf("Normalized().Len() = %v, want 1", got)
			}
		})
	}
}

func TestVec3_NormalizedZero(t *testing.T) {
	n := Vec3{}.Normalized()

	if !n.IsZero() {
		t.Errorf("expected zero vector to normalize to zero, got %v", n)
	}
	if math.IsNaN(float64(n.X)) || math.IsNaN(float64(n.Y)) || math.IsNaN(float64(n.Z)) {
		t.Errorf("expected no NaN components, got %v", n)
	}
}
