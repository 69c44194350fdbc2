package grouping

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ironsheep/shelfgroup/internal/detection"
)

var (
	red   = color.RGBA{220, 30, 30, 255}
	blue  = color.RGBA{30, 40, 200, 255}
	white = color.RGBA{250, 250, 250, 255}
	black = color.RGBA{5, 5, 5, 255}
	gray  = color.RGBA{128, 128, 128, 255}
)

// patch is a solid rectangle painted on a test shelf.
type patch struct {
	rect image.Rectangle
	c    color.Color
}

// newShelf paints patches over a gray background.
func newShelf(width, height int, patches ...patch) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(gray), image.Point{}, draw.Src)
	for _, p := range patches {
		draw.Draw(img, p.rect, image.NewUniform(p.c), image.Point{}, draw.Src)
	}
	return img
}

// detectionsFor returns one detection per patch covering exactly the patch.
func detectionsFor(patches ...patch) []detection.Detection {
	dets := make([]detection.Detection, len(patches))
	for i, p := range patches {
		r := p.rect
		dets[i] = detection.Detection{
			BBox:       detection.Box{float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y)},
			Confidence: 0.9,
			Class:      "product",
		}
	}
	return dets
}

// partition maps every index to the smallest index sharing its label, so two
// labelings with the same partition compare equal. Noise points map to -1.
func partition(labels []int) []int {
	first := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		if l == detection.Noise {
			out[i] = -1
			continue
		}
		if _, ok := first[l]; !ok {
			first[l] = i
		}
		out[i] = first[l]
	}
	return out
}
