package dynamo

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		v     r3.Vec
		valid bool
	}{
		{"zero", r3.Vec{}, true},
		{"normal", r3.Vec{X: 1, Y: 2, Z: 3}, true},
		{"with NaN", r3.Vec{X: 1, Y: math.NaN()}, false},
		{"with +Inf", r3.Vec{Z: math.Inf(1)}, false},
		{"with -Inf", r3.Vec{X: math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.v); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestProject(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	if got := Project(v, TwoD); got != (r3.Vec{X: 1, Y: 2}) {
		t.Errorf("Project 2d = %v", got)
	}
	if got := Project(v, ThreeD); got != v {
		t.Errorf("Project 3d = %v", got)
	}
}

func TestClamp(t *testing.T) {
	v := Clamp(r3.Vec{X: 3, Y: 4}, 1)
	if math.Abs(r3.Norm(v)-1) > 1e-12 {
		t.Errorf("Clamp length = %v, want 1", r3.Norm(v))
	}
	short := r3.Vec{X: 0.1}
	if Clamp(short, 1) != short {
		t.Error("Clamp changed a short vector")
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([]r3.Vec{{X: 1}, {X: 3}, {Y: 3}})
	if math.Abs(c.X-4.0/3) > 1e-12 || math.Abs(c.Y-1) > 1e-12 {
		t.Errorf("Centroid = %v", c)
	}
	if Centroid(nil) != (r3.Vec{}) {
		t.Error("Centroid of nothing should be zero")
	}
}

func TestParseDimensions(t *testing.T) {
	for in, want := range map[string]Dimensions{"2": TwoD, "2d": TwoD, "3D": ThreeD} {
		got, err := ParseDimensions(in)
		if err != nil || got != want {
			t.Errorf("ParseDimensions(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDimensions("4"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestDirectionTableUnitVectors(t *testing.T) {
	table := NewDirectionTable(64)
	for _, d := range []Dimensions{TwoD, ThreeD} {
		for u := -1.5; u <= 1.5; u += 0.01 {
			v := table.At(d, u)
			if math.Abs(r3.Norm(v)-1) > 1e-9 {
				t.Fatalf("%v direction at %v has length %v", d, u, r3.Norm(v))
			}
			if d == TwoD && v.Z != 0 {
				t.Fatalf("2d direction has z component %v", v.Z)
			}
		}
	}
	if v := table.At(TwoD, math.NaN()); !IsFinite(v) {
		t.Error("NaN sample produced non-finite direction")
	}
}

func TestErrorWrapping(t *testing.T) {
	cfgErr := &ConfigError{Field: "dt", Value: -1, Reason: "must be positive"}
	if !errors.Is(cfgErr, ErrInvalidConfiguration) {
		t.Error("ConfigError should unwrap to ErrInvalidConfiguration")
	}
	refErr := &ReferenceError{Kind: "node", Index: 7}
	if !errors.Is(refErr, ErrInvalidReference) {
		t.Error("ReferenceError should unwrap to ErrInvalidReference")
	}
	if refErr.Error() != "dynamo: invalid reference (unknown node or edge): node 7" {
		t.Errorf("unexpected message %q", refErr.Error())
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1000} {
		hits := make([]int, n)
		ParallelFor(n, 8, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d index %d visited %d times", n, i, h)
			}
		}
	}
}
