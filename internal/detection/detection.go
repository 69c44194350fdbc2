package detection

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
)

// Noise is the group label reserved for detections that did not join a cluster.
const Noise = -1

// Box is the raw [x1, y1, x2, y2] bounding box of a detection as supplied by
// the detector. Values are pixel coordinates and may be fractional.
type Box [4]float64

// UnmarshalJSON requires exactly four numeric coordinates.
func (b *Box) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "bbox must be an array of numbers")
	}
	if len(raw) != 4 {
		return errors.Errorf("bbox must have 4 coordinates, got %d", len(raw))
	}
	copy(b[:], raw)
	return nil
}

// Region converts the box to integer pixel coordinates, truncating toward zero.
func (b Box) Region() Region {
	return Region{
		X1: truncate(b[0]),
		Y1: truncate(b[1]),
		X2: truncate(b[2]),
		Y2: truncate(b[3]),
	}
}

// Finite reports whether all four coordinates are finite numbers.
func (b Box) Finite() bool {
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func truncate(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(v)
}

// Region is an axis-aligned rectangle in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), matching image.Rectangle.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Valid reports whether the region has positive width and height.
func (r Region) Valid() bool {
	return r.X1 < r.X2 && r.Y1 < r.Y2
}

// Inverted reports whether a corner pair is swapped. Zero-extent regions are
// degenerate but not inverted.
func (r Region) Inverted() bool {
	return r.X1 > r.X2 || r.Y1 > r.Y2
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r.X1, r.Y1), Max: image.Pt(r.X2, r.Y2)}
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// RGB is a display color with 8-bit components. It serializes as [r, g, b].
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// MarshalJSON encodes the color as a three element array.
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(c.R), int(c.G), int(c.B)})
}

// UnmarshalJSON decodes a three element array of 0-255 integers.
func (c *RGB) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "color must be an array of integers")
	}
	if len(raw) != 3 {
		return errors.Errorf("color must have 3 components, got %d", len(raw))
	}
	for i, v := range raw {
		if v < 0 || v > 255 {
			return errors.Errorf("color component %d out of range: %d", i, v)
		}
	}
	c.R, c.G, c.B = uint8(raw[0]), uint8(raw[1]), uint8(raw[2])
	return nil
}

// Hex returns the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Detection is one detected object. Group and Color are nil until the
// detection has been assigned a group.
type Detection struct {
	BBox       Box     `json:"bbox"`
	Confidence float64 `json:"confidence"`
	Class      string  `json:"class"`
	Group      *int    `json:"group,omitempty"`
	Color      *RGB    `json:"color,omitempty"`
}

// Region returns the integer region of the detection's bounding box.
func (d Detection) Region() Region {
	return d.BBox.Region()
}

// Label returns the assigned group, or Noise when none has been assigned.
func (d Detection) Label() int {
	if d.Group == nil {
		return Noise
	}
	return *d.Group
}

// Grouped reports whether a group has been assigned.
func (d Detection) Grouped() bool {
	return d.Group != nil
}

// WithGroup returns a copy of d carrying the given group label and color.
func (d Detection) WithGroup(label int, c RGB) Detection {
	g := label
	col := c
	d.Group = &g
	d.Color = &col
	return d
}

// Clone returns a deep copy of the list so callers can annotate it without
// touching the original.
func Clone(dets []Detection) []Detection {
	if dets == nil {
		return nil
	}
	out := make([]Detection, len(dets))
	for i, d := range dets {
		if d.Group != nil {
			g := *d.Group
			d.Group = &g
		}
		if d.Color != nil {
			c := *d.Color
			d.Color = &c
		}
		out[i] = d
	}
	return out
}

// Parse decodes a JSON array of detections.
func Parse(data []byte) ([]Detection, error) {
	var dets []Detection
	if err := json.Unmarshal(data, &dets); err != nil {
		return nil, errors.Wrap(err, "failed to parse detections")
	}
	if dets == nil {
		dets = []Detection{}
	}
	return dets, nil
}
