package imaging

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Lab represents a color in the CIE L*a*b* color space (D65 white point).
//
// The channels use the conventional CIE scale:
//   - L: lightness, 0 (black) to 100 (diffuse white)
//   - A: green (negative) to red (positive), roughly -128 to 127
//   - B: blue (negative) to yellow (positive), roughly -128 to 127
//
// Euclidean distance in this space approximates perceived color difference,
// which is why region appearance is compared in Lab rather than RGB.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// ToLab converts a color to CIE L*a*b*.
//
// Fully transparent colors convert as black. Partially transparent colors are
// un-premultiplied before conversion.
func ToLab(c color.Color) Lab {
	cf, _ := colorful.MakeColor(c)
	l, a, b := cf.Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// MeanLab returns the per-channel arithmetic mean of every pixel of img in
// CIE L*a*b*.
//
// Parameters:
//   - img: The pixels to average. Any image.Image works; the whole bounds are
//     visited.
//
// Returns:
//   - Lab: The mean color.
//   - error: Non-nil if img has no pixels.
//
// # Averaging
//
// Each pixel is converted individually and the Lab channels are averaged, so
// the result is the mean of perceptual coordinates, not the Lab conversion of
// the mean RGB color. The two differ for mixed-color regions.
func MeanLab(img image.Image) (Lab, error) {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n <= 0 {
		return Lab{}, errors.New("cannot average an empty image")
	}

	var sumL, sumA, sumB float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := ToLab(img.At(x, y))
			sumL += c.L
			sumA += c.A
			sumB += c.B
		}
	}

	fn := float64(n)
	return Lab{L: sumL / fn, A: sumA / fn, B: sumB / fn}, nil
}
