package grouping

import (
	"image"

	"github.com/ironsheep/shelfgroup/internal/detection"
	"github.com/ironsheep/shelfgroup/internal/imaging"
)

// FeatureDim is the length of every feature vector: three Lab channel means
// followed by the vertical center of the region.
const FeatureDim = 4

// Extractor turns one image region into a feature vector combining color
// appearance and shelf-row position.
type Extractor struct {
	size           int
	colorWeight    float64
	positionWeight float64
}

// NewExtractor returns an extractor that resizes crops to size x size and
// applies the given weights to the color and position components.
func NewExtractor(size int, colorWeight, positionWeight float64) *Extractor {
	return &Extractor{
		size:           size,
		colorWeight:    colorWeight,
		positionWeight: positionWeight,
	}
}

// Extract computes the feature vector of region r within img.
//
// The vector is [L*w, a*w, b*w, cy*p] where L, a, b are the mean CIE Lab
// channels of the crop resized to the canonical size, cy is the region's
// vertical center as a fraction of the image height, w is the color weight and
// p the position weight.
//
// ok is false when the region is not extractable: zero or negative extent, or
// no pixels left after clamping to the image.
func (e *Extractor) Extract(img image.Image, r detection.Region) (vec []float64, ok bool) {
	if !r.Valid() {
		return nil, false
	}
	height := img.Bounds().Dy()
	if height <= 0 {
		return nil, false
	}

	crop, err := imaging.CropCanonical(img, r.Rect(), e.size)
	if err != nil {
		return nil, false
	}
	lab, err := imaging.MeanLab(crop)
	if err != nil {
		return nil, false
	}

	centerY := float64(r.Y1+r.Y2) / float64(2*height)
	return []float64{
		lab.L * e.colorWeight,
		lab.A * e.colorWeight,
		lab.B * e.colorWeight,
		centerY * e.positionWeight,
	}, true
}
