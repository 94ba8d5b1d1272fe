package imageproc

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is wrapped by errors for bytes that cannot be decoded into an image.
var ErrDecode = errors.New("invalid image")

// DefaultMaxPixels bounds width*height of accepted images. Models take
// inputs of a few hundred pixels a side, so 40 MP leaves room for camera photos.
const DefaultMaxPixels = 40_000_000

// Inspect reads only the image header and checks its dimensions against
// maxPixels (DefaultMaxPixels when <= 0). r is rewound before returning.
func Inspect(r io.ReadSeeker, maxPixels int) (image.Config, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("%w: empty image %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return cfg, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return cfg, fmt.Errorf("rewind: %w", err)
	}
	return cfg, nil
}

// Decode reads an image, applying EXIF orientation when present. Images that
// fail Inspect are rejected before the pixel data is decoded.
func Decode(r io.ReadSeeker, maxPixels int) (image.Image, error) {
	if _, err := Inspect(r, maxPixels); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
