// Package imaging provides the pixel-level operations used by product
// grouping: loading and saving images, clamped region cropping, canonical
// resizing and CIE L*a*b* color conversion.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Region coordinates are relative to the image's top-left corner even when the
// image bounds do not start at (0,0), which happens for sub-images.
//
// # Thread Safety
//
// Every function is stateless and safe to call concurrently. Crop and
// CropCanonical return new buffers and never modify their input.
//
// # Color Representation
//
// Lab values use the CIE scale (L in 0-100, a and b roughly -128..127) with a
// D65 white point. Conversion is done by github.com/lucasb-eyer/go-colorful.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions that are empty after clamping to the image bounds
//   - File I/O errors during image loading or saving
//   - Encoding errors during image output
package imaging
