package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createInMemoryImage creates a solid color image for testing
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates a test image with distinct quadrants
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue
			} else {
				c = color.RGBA{255, 255, 255, 255} // White
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestToLab_KnownColors(t *testing.T) {
	tests := []struct {
		name  string
		color color.Color
		want  Lab
	}{
		{"black", color.RGBA{0, 0, 0, 255}, Lab{0, 0, 0}},
		{"white", color.RGBA{255, 255, 255, 255}, Lab{100, 0, 0}},
		{"red", color.RGBA{255, 0, 0, 255}, Lab{53.24, 80.09, 67.20}},
		{"green", color.RGBA{0, 255, 0, 255}, Lab{87.73, -86.18, 83.18}},
		{"blue", color.RGBA{0, 0, 255, 255}, Lab{32.30, 79.19, -107.86}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToLab(tt.color)
			if !labClose(got, tt.want, 0.5) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMeanLab_SolidImage(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{255, 0, 0, 255})

	got, err := MeanLab(img)
	if err != nil {
		t.Fatalf("MeanLab failed: %v", err)
	}
	want := ToLab(color.RGBA{255, 0, 0, 255})
	if !labClose(got, want, 1e-9) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMeanLab_AveragesPerPixel(t *testing.T) {
	// Half black, half white: mean lightness is 50, not the lightness of mid gray.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{0, 0, 0, 255})
	img.Set(1, 0, color.RGBA{255, 255, 255, 255})

	got, err := MeanLab(img)
	if err != nil {
		t.Fatalf("MeanLab failed: %v", err)
	}
	if math.Abs(got.L-50) > 0.5 {
		t.Errorf("L: got %.2f, want 50", got.L)
	}
}

func TestMeanLab_SubImage(t *testing.T) {
	img := createPatternImage(100, 100)
	sub := img.SubImage(image.Rect(50, 50, 100, 100))

	got, err := MeanLab(sub)
	if err != nil {
		t.Fatalf("MeanLab failed: %v", err)
	}
	if !labClose(got, Lab{100, 0, 0}, 0.5) {
		t.Errorf("white quadrant: got %+v", got)
	}
}

func TestMeanLab_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := MeanLab(img); err == nil {
		t.Error("MeanLab should fail for an empty image")
	}
}

func labClose(a, b Lab, tol float64) bool {
	return math.Abs(a.L-b.L) <= tol && math.Abs(a.A-b.A) <= tol && math.Abs(a.B-b.B) <= tol
}
