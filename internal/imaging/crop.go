package imaging

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrEmptyCrop is returned when a region has no pixels inside the image.
var ErrEmptyCrop = errors.New("crop region is empty after clamping to image bounds")

// ClampRect intersects r, given relative to the image's top-left corner, with
// the image bounds. The result is in image coordinates and may be empty.
func ClampRect(img image.Image, r image.Rectangle) image.Rectangle {
	bounds := img.Bounds()
	return r.Add(bounds.Min).Intersect(bounds)
}

// Crop extracts the part of r that lies inside the image.
//
// r is relative to the image's top-left corner. Regions that extend past the
// image are clamped; regions with zero width or height after clamping return
// ErrEmptyCrop.
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	rect := ClampRect(img, r)
	if rect.Empty() {
		return nil, errors.Wrapf(ErrEmptyCrop, "region %v", r)
	}
	return imaging.Crop(img, rect), nil
}

// CropCanonical crops r and resizes the crop to size x size pixels with a
// bilinear filter so that aggregates over the crop do not depend on the
// region's size.
func CropCanonical(img image.Image, r image.Rectangle, size int) (*image.NRGBA, error) {
	if size < 1 {
		return nil, errors.Errorf("invalid canonical size %d", size)
	}
	cropped, err := Crop(img, r)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(cropped, size, size, imaging.Linear), nil
}
