package qrstack

import (
	"image"
	"image/color"

	"github.com/qrstack/qrstack/bitutil"
)

// ImageLuminanceSource is a LuminanceSource over a Go image.Image. Pixels are
// converted to greyscale luminance once, at construction.
type ImageLuminanceSource struct {
	luminances []byte
	width      int
	height     int
}

// NewImageLuminanceSource creates a LuminanceSource from an image.Image,
// weighting color channels as 601 luma in 10 bit fixed point:
// (306*R + 601*G + 117*B + 0x200) >> 10 on 8-bit components.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	luminances := make([]byte, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			if a == 0 {
				// Fully transparent pixels read as white.
				luminances[y*w+x] = 0xFF
			} else {
				r8 := r >> 8
				g8 := g >> 8
				b8 := b >> 8
				luminances[y*w+x] = byte((306*r8 + 601*g8 + 117*b8 + 0x200) >> 10)
			}
		}
	}

	return &ImageLuminanceSource{
		luminances: luminances,
		width:      w,
		height:     h,
	}
}

// NewGrayImageLuminanceSource creates a LuminanceSource from an *image.Gray,
// using the pixel data directly without conversion.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if img.Stride == w && bounds.Min.X == 0 && bounds.Min.Y == 0 {
		lum := make([]byte, w*h)
		copy(lum, img.Pix[:w*h])
		return &ImageLuminanceSource{
			luminances: lum,
			width:      w,
			height:     h,
		}
	}

	luminances := make([]byte, w*h)
	for y := 0; y < h; y++ {
		srcOff := (bounds.Min.Y+y)*img.Stride + bounds.Min.X
		copy(luminances[y*w:], img.Pix[srcOff:srcOff+w])
	}
	return &ImageLuminanceSource{
		luminances: luminances,
		width:      w,
		height:     h,
	}
}

// Row returns a row of luminance data.
func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if row == nil || len(row) < s.width {
		row = make([]byte, s.width)
	}
	offset := y * s.width
	copy(row, s.luminances[offset:offset+s.width])
	return row
}

// Matrix returns the entire luminance matrix.
func (s *ImageLuminanceSource) Matrix() []byte {
	result := make([]byte, len(s.luminances))
	copy(result, s.luminances)
	return result
}

// Crop returns a source over the given subregion, or nil when the region
// does not fit inside the image.
func (s *ImageLuminanceSource) Crop(left, top, width, height int) LuminanceSource {
	if left < 0 || top < 0 || width < 1 || height < 1 ||
		left+width > s.width || top+height > s.height {
		return nil
	}
	luminances := make([]byte, width*height)
	for y := 0; y < height; y++ {
		srcOff := (top+y)*s.width + left
		copy(luminances[y*width:(y+1)*width], s.luminances[srcOff:srcOff+width])
	}
	return &ImageLuminanceSource{
		luminances: luminances,
		width:      width,
		height:     height,
	}
}

// Width returns the width of the image.
func (s *ImageLuminanceSource) Width() int {
	return s.width
}

// Height returns the height of the image.
func (s *ImageLuminanceSource) Height() int {
	return s.height
}

// BitMatrixToImage converts a rendered matrix to a grayscale image where set
// bits are black (0) and clear bits are white (255).
func BitMatrixToImage(matrix *bitutil.BitMatrix) *image.Gray {
	w := matrix.Width()
	h := matrix.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
