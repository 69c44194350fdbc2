package grouping

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/shelfgroup/internal/detection"
)

var (
	// ErrNonFinite is returned when a point has a NaN or infinite coordinate.
	ErrNonFinite = errors.New("point has a non-finite coordinate")
	// ErrDimensionMismatch is returned when points differ in length.
	ErrDimensionMismatch = errors.New("points have different dimensions")
)

// DBSCAN is density-based spatial clustering with a Euclidean metric.
//
// A point is a core point when at least MinSamples points, itself included,
// lie within Eps of it. Clusters are the connected components of core points
// plus the non-core points within Eps of them. Everything else is noise.
type DBSCAN struct {
	Eps        float64
	MinSamples int
}

// Fit assigns a label to every point. Labels are 0, 1, ... in order of the
// lowest-indexed core point of each cluster; noise is detection.Noise.
//
// A border point within reach of two clusters joins whichever is discovered
// first, which is the only input-order dependence of the partition.
func (d DBSCAN) Fit(points [][]float64) ([]int, error) {
	if err := checkPoints(points); err != nil {
		return nil, err
	}

	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = detection.Noise
	}
	neighbors := d.neighborhoods(points)
	visited := make([]bool, n)

	cluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		if len(neighbors[i]) < d.MinSamples {
			continue
		}

		labels[i] = cluster
		queue := append([]int(nil), neighbors[i]...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == detection.Noise {
				labels[j] = cluster
			}
			if visited[j] {
				continue
			}
			visited[j] = true
			if len(neighbors[j]) >= d.MinSamples {
				queue = append(queue, neighbors[j]...)
			}
		}
		cluster++
	}
	return labels, nil
}

// neighborhoods returns, for every point, the indices within Eps including
// the point itself.
func (d DBSCAN) neighborhoods(points [][]float64) [][]int {
	out := make([][]int, len(points))
	for i := range points {
		out[i] = append(out[i], i)
		for j := i + 1; j < len(points); j++ {
			if floats.Distance(points[i], points[j], 2) <= d.Eps {
				out[i] = append(out[i], j)
				out[j] = append(out[j], i)
			}
		}
	}
	return out
}

func checkPoints(points [][]float64) error {
	if len(points) == 0 {
		return nil
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return errors.Wrapf(ErrDimensionMismatch, "point %d has %d values, want %d", i, len(p), dim)
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Wrapf(ErrNonFinite, "point %d", i)
			}
		}
	}
	return nil
}
