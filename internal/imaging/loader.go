package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Load opens and decodes an image file.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, BMP and TIFF.
//
// Returns:
//   - image.Image: The decoded image with EXIF orientation applied, so pixel
//     coordinates match what a detector sees after the same correction.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// Images are not cached. Each call reads the file so that concurrent requests
// never share an image buffer.
func Load(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	return img, nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", or "unknown".
	// Detection is based on file extension, not file contents.
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns its dimensions, format and size.
//
// # Format Detection
//
// The format is determined by file extension:
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - Other extensions -> "unknown"
func LoadImageInfo(path string) (*ImageInfo, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// Save encodes img to path, choosing the encoder from the file extension.
//
// The image is encoded into a temporary file in the destination directory
// and renamed over path only once it is complete, so a failed Save never
// leaves a partial file behind and never touches an existing one.
func Save(img image.Image, path string) (err error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return errors.Wrapf(err, "unsupported output format for %s", path)
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := f.Chmod(0o644); err != nil {
		return errors.Wrap(err, "failed to set output file mode")
	}
	if err := imaging.Encode(f, img, format); err != nil {
		return errors.Wrap(err, "failed to encode image")
	}
	// A failed close can mean buffered data never reached the disk.
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to close output file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "failed to move output file into place")
	}
	return nil
}

// OutputPath returns the path the rendered visualization of imagePath is
// written to: the same directory, with prefix prepended to the file name.
func OutputPath(imagePath, prefix string) string {
	dir, name := filepath.Split(imagePath)
	return filepath.Join(dir, prefix+name)
}
