// Package visualize renders grouped detections as translucent colored boxes
// with a "Group N" tag over the source image.
package visualize

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
	"strconv"

	"github.com/anthonynsimon/bild/blend"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/ironsheep/shelfgroup/internal/config"
	"github.com/ironsheep/shelfgroup/internal/detection"
	"github.com/ironsheep/shelfgroup/internal/grouping"
	"github.com/ironsheep/shelfgroup/internal/imaging"
)

// ErrMalformedRegion is returned for bounding boxes with swapped corners or
// non-finite coordinates.
var ErrMalformedRegion = errors.New("malformed region")

var tagTextColor = color.White

// Visualizer draws group overlays. It holds only read-only configuration and
// can be shared by concurrent requests.
type Visualizer struct {
	palette  grouping.Palette
	opacity  float64
	fontSize float64
	padding  int
	logger   *zap.SugaredLogger
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithLogger sets the logger used for rendering diagnostics.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(v *Visualizer) {
		v.logger = logger
	}
}

// New builds a Visualizer that colors groups from palette.
func New(cfg config.Config, palette grouping.Palette, opts ...Option) *Visualizer {
	v := &Visualizer{
		palette:  palette,
		opacity:  cfg.OverlayOpacity,
		fontSize: cfg.FontSize,
		padding:  cfg.TagPadding,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Result is the outcome of Visualize.
type Result struct {
	// Image is the rendered image, or the untouched source when Err is set.
	Image image.Image
	// Rendered is false when the source was returned because of a failure.
	Rendered bool
	// Path is where the rendered image was written; empty if nothing was.
	Path string
	Err  error
}

// Visualize renders dets over src and, when dst is not empty, writes the
// result to dst. On any drawing or writing failure the result holds src
// itself and the error.
func (v *Visualizer) Visualize(src image.Image, dets []detection.Detection, dst string) Result {
	canvas, err := v.Render(src, dets)
	if err != nil {
		v.logger.Errorw("visualization failed, returning source image", "error", err)
		return Result{Image: src, Err: err}
	}
	if dst != "" {
		if err := imaging.Save(canvas, dst); err != nil {
			v.logger.Errorw("failed to write visualization", "path", dst, "error", err)
			return Result{Image: src, Err: err}
		}
	}
	return Result{Image: canvas, Rendered: true, Path: dst}
}

// Render draws every detection onto a copy of src and returns the copy.
//
// Detections are drawn in ascending group order so higher groups end up on
// top where regions overlap. Detections without a group draw as noise.
// Zero-extent regions are skipped; swapped corners or non-finite coordinates
// abort the whole rendering with ErrMalformedRegion.
func (v *Visualizer) Render(src image.Image, dets []detection.Detection) (*image.RGBA, error) {
	bounds := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Src)

	ordered := make([]detection.Detection, len(dets))
	copy(ordered, dets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Label() < ordered[j].Label()
	})

	face := newFace(v.fontSize)
	defer face.Close()

	for _, d := range ordered {
		if !d.BBox.Finite() {
			return nil, errors.Wrapf(ErrMalformedRegion, "non-finite bbox %v", d.BBox)
		}
		r := d.Region()
		if r.Inverted() {
			return nil, errors.Wrapf(ErrMalformedRegion, "region %s", r)
		}
		if !r.Valid() {
			v.logger.Debugw("skipping zero-extent region", "region", r.String())
			continue
		}

		c := v.colorOf(d.Label())
		blendRect(canvas, r.Rect(), c, v.opacity)
		v.drawTag(canvas, face, r, TagText(d.Label()), c)
	}
	return canvas, nil
}

// TagBounds returns the rectangle covered by the label tag of d.
func (v *Visualizer) TagBounds(d detection.Detection) image.Rectangle {
	face := newFace(v.fontSize)
	defer face.Close()
	return v.tagRect(face, d.Region(), TagText(d.Label()))
}

// TagText returns the tag caption for a group label.
func TagText(label int) string {
	if label < 0 {
		return "Group U"
	}
	return "Group " + strconv.Itoa(label)
}

func (v *Visualizer) colorOf(label int) color.RGBA {
	c := v.palette.Color(label)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// tagRect sits on top of the region's top edge, starting at its left edge,
// and is as wide as the text and as tall as the font plus padding.
func (v *Visualizer) tagRect(face font.Face, r detection.Region, text string) image.Rectangle {
	width := font.MeasureString(face, text).Ceil()
	height := int(math.Ceil(float64(face.Metrics().Height) / 64))
	return image.Rect(r.X1, r.Y1-height-v.padding, r.X1+width, r.Y1)
}

// drawTag renders the tag on its own small context and copies it onto the
// canvas, so glyphs never leave the tag and off-canvas parts are dropped.
func (v *Visualizer) drawTag(canvas *image.RGBA, face font.Face, r detection.Region, text string, c color.RGBA) {
	tag := v.tagRect(face, r, text)
	if tag.Empty() || tag.Intersect(canvas.Bounds()).Empty() {
		return
	}

	dc := gg.NewContext(tag.Dx(), tag.Dy())
	dc.SetColor(c)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetColor(tagTextColor)
	dc.DrawString(text, 0, float64(tag.Dy()-v.padding))

	draw.Draw(canvas, tag, dc.Image(), image.Point{}, draw.Src)
}

// blendRect mixes c into the part of r inside canvas with the given opacity.
func blendRect(canvas *image.RGBA, r image.Rectangle, c color.Color, opacity float64) {
	r = r.Intersect(canvas.Bounds())
	if r.Empty() {
		return
	}
	overlay := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(overlay, overlay.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	mixed := blend.Opacity(canvas.SubImage(r), overlay, opacity)
	draw.Draw(canvas, r, mixed, image.Point{}, draw.Src)
}
