package grouping

import "github.com/ironsheep/shelfgroup/internal/detection"

// Palette maps group labels to display colors.
type Palette map[int]detection.RGB

// DefaultPalette returns the nine cluster colors plus black for noise.
//
// Labels beyond 8 have no entry and render in the noise color.
func DefaultPalette() Palette {
	return Palette{
		0:               {R: 0, G: 255, B: 0},
		1:               {R: 0, G: 0, B: 255},
		2:               {R: 255, G: 0, B: 0},
		3:               {R: 0, G: 255, B: 255},
		4:               {R: 255, G: 0, B: 255},
		5:               {R: 255, G: 255, B: 0},
		6:               {R: 0, G: 128, B: 255},
		7:               {R: 255, G: 0, B: 128},
		8:               {R: 128, G: 255, B: 0},
		detection.Noise: {R: 0, G: 0, B: 0},
	}
}

// Color returns the color for label, or the noise color when the label has
// no entry.
func (p Palette) Color(label int) detection.RGB {
	if c, ok := p[label]; ok {
		return c
	}
	return p[detection.Noise]
}
