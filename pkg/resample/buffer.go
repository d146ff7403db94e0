package resample

import (
	"fmt"
	"image"
	"image/color"
)

// Pack flattens a color buffer into tightly packed RGBA bytes, four per
// pixel, rows in buffer order. This is the layout a texture upload expects
// with a stride of width*4 bytes.
func Pack(buf []color.RGBA) []byte {
	out := make([]byte, 0, len(buf)*4)
	for _, c := range buf {
		out = append(out, c.R, c.G, c.B, c.A)
	}
	return out
}

// Unpack is the inverse of Pack.
func Unpack(b []byte) ([]color.RGBA, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of pixels", ErrBufferSize, len(b))
	}
	buf := make([]color.RGBA, len(b)/4)
	for i := range buf {
		buf[i] = color.RGBA{R: b[4*i], G: b[4*i+1], B: b[4*i+2], A: b[4*i+3]}
	}
	return buf, nil
}

// ToImage copies a buffer into an image. Buffer row 0 is the bottom of the
// plane, so it becomes the last image row.
func ToImage(buf []color.RGBA, width, height int) (*image.RGBA, error) {
	if err := checkSize(width, height, len(buf)); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for py := 0; py < height; py++ {
		y := height - 1 - py
		for px := 0; px < width; px++ {
			img.SetRGBA(px, y, buf[py*width+px])
		}
	}
	return img, nil
}
