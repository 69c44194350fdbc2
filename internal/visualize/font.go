package visualize

import (
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var tagFont *truetype.Font

// init parses the embedded Go Regular font used for tag text.
func init() {
	var err error
	tagFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// newFace returns a face for one rendering pass. Faces cache glyphs and must
// not be shared between goroutines.
func newFace(size float64) font.Face {
	return truetype.NewFace(tagFont, &truetype.Options{Size: size})
}
