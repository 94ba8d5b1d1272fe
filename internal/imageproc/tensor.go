package imageproc

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Layout is the memory order of the produced tensor.
type Layout string

const (
	LayoutCHW Layout = "chw"
	LayoutHWC Layout = "hwc"
)

// Spec describes how an image becomes model input.
type Spec struct {
	Size   int        // square edge in pixels
	Mean   [3]float32 // per-channel mean, applied after scaling to [0,1]
	Std    [3]float32 // per-channel std; zero entries are treated as 1
	Layout Layout
	// Crop center-crops to a square before resizing; otherwise the image is
	// stretched.
	Crop bool
}

// Len returns the number of float32 values ToTensor produces.
func (s Spec) Len() int { return 3 * s.Size * s.Size }

// CenterSquare crops img to its largest centered square.
func CenterSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side == b.Dx() && side == b.Dy() {
		return img
	}
	return imaging.CropCenter(img, side, side)
}

// ToTensor resizes img to spec.Size and returns normalized RGB values.
func ToTensor(img image.Image, spec Spec) []float32 {
	if spec.Crop {
		img = CenterSquare(img)
	}
	size := uint(spec.Size)
	resized := resize.Resize(size, size, img, resize.Lanczos3)

	std := spec.Std
	for i := range std {
		if std[i] == 0 {
			std[i] = 1
		}
	}

	b := resized.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px := [3]float32{float32(r) / 65535.0, float32(g) / 65535.0, float32(bl) / 65535.0}
			for c := 0; c < 3; c++ {
				v := (px[c] - spec.Mean[c]) / std[c]
				if spec.Layout == LayoutHWC {
					out[(y*w+x)*3+c] = v
				} else {
					out[c*plane+y*w+x] = v
				}
			}
		}
	}
	return out
}
