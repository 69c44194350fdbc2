package grouping

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"gonum.org/v1/gonum/stat"
)

func TestNormalizer_ZeroMeanUnitStd(t *testing.T) {
	batch := [][]float64{
		{10, 0.1, -5, 3},
		{20, 0.2, -5, 4},
		{30, 0.4, -5, 8},
		{40, 0.9, -5, 1},
	}
	out, err := Normalizer{Epsilon: 1e-8}.Normalize(batch)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(out) != len(batch) {
		t.Fatalf("rows: got %d, want %d", len(out), len(batch))
	}
	for j := 0; j < 4; j++ {
		col := make([]float64, len(out))
		for i := range out {
			col[i] = out[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if math.Abs(mean) > 1e-9 {
			t.Errorf("dim %d: mean %.3g, want 0", j, mean)
		}
		if j == 2 {
			// Constant dimension collapses to zero.
			for i, v := range col {
				if v != 0 {
					t.Errorf("constant dim row %d: got %v, want 0", i, v)
				}
			}
			continue
		}
		if math.Abs(std-1) > 1e-6 {
			t.Errorf("dim %d: std %.6f, want 1", j, std)
		}
	}
}

func TestNormalizer_Empty(t *testing.T) {
	out, err := Normalizer{Epsilon: 1e-8}.Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("got %v, want empty batch", out)
	}
}

func TestNormalizer_SinglePoint(t *testing.T) {
	out, err := Normalizer{Epsilon: 1e-8}.Normalize([][]float64{{37.2, -4, 12, 0.15}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for j, v := range out[0] {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("dim %d: got %v, want 0", j, v)
		}
	}
}

func TestNormalizer_DoesNotModifyInput(t *testing.T) {
	batch := [][]float64{{1, 2}, {3, 4}}
	if _, err := (Normalizer{Epsilon: 1e-8}).Normalize(batch); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if batch[0][0] != 1 || batch[1][1] != 4 {
		t.Errorf("input modified: %v", batch)
	}
}

func TestNormalizer_TwoPoints(t *testing.T) {
	// With two points every non-constant dimension maps to -1 and +1.
	out, err := Normalizer{Epsilon: 1e-8}.Normalize([][]float64{{1, 5}, {1.001, 5}})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if math.Abs(out[0][0]+1) > 1e-3 || math.Abs(out[1][0]-1) > 1e-3 {
		t.Errorf("got %v", out)
	}
}

func TestNormalizer_DimensionMismatch(t *testing.T) {
	tests := []struct {
		name  string
		batch [][]float64
	}{
		{"shorter later vector", [][]float64{{1, 2, 3, 4}, {1, 2}}},
		{"longer later vector", [][]float64{{1, 2}, {1, 2, 3}}},
		{"empty later vector", [][]float64{{1, 2}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalizer{Epsilon: 1e-8}.Normalize(tt.batch)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("got %v, want %v", err, ErrDimensionMismatch)
			}
			if out != nil {
				t.Errorf("got %v, want nil batch", out)
			}
		})
	}
}
