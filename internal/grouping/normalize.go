package grouping

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Normalizer rescales a batch of feature vectors to zero mean and unit
// variance per dimension.
type Normalizer struct {
	// Epsilon is added to each standard deviation so constant dimensions map
	// to zero instead of dividing by zero.
	Epsilon float64
}

// Normalize returns (v - mean) / (std + Epsilon) for every value, where mean
// and std are the population statistics of that value's dimension across the
// batch. Vectors of differing length return ErrDimensionMismatch. The input
// is not modified.
func (n Normalizer) Normalize(batch [][]float64) ([][]float64, error) {
	out := make([][]float64, len(batch))
	if len(batch) == 0 {
		return out, nil
	}

	dim := len(batch[0])
	for i, vec := range batch {
		if len(vec) != dim {
			return nil, errors.Wrapf(ErrDimensionMismatch, "vector %d has %d values, want %d", i, len(vec), dim)
		}
		out[i] = make([]float64, dim)
	}

	column := make([]float64, len(batch))
	for j := 0; j < dim; j++ {
		for i, vec := range batch {
			column[i] = vec[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		if math.IsNaN(std) {
			// A batch of one has no spread.
			std = 0
		}
		for i := range batch {
			out[i][j] = (column[i] - mean) / (std + n.Epsilon)
		}
	}
	return out, nil
}
