package jp2k

import (
	"fmt"
	"image"
)

// ImageBuffer is a packed, band-interleaved 8-bit pixel buffer.
type ImageBuffer struct {
	Buffer []byte
	Width  uint32
	Height uint32
	Bands  int // 1 (gray), 3 (RGB) or 4 (RGBA)
}

// Image wraps the buffer as an image.Image: *image.Gray for one band and
// *image.NRGBA otherwise. The one and four band cases share the buffer.
func (b *ImageBuffer) Image() (image.Image, error) {
	w, h := int(b.Width), int(b.Height)
	if len(b.Buffer) != w*h*b.Bands {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d", ErrBufferSize, len(b.Buffer), w, h, b.Bands)
	}
	rect := image.Rect(0, 0, w, h)
	switch b.Bands {
	case 1:
		return &image.Gray{Pix: b.Buffer, Stride: w, Rect: rect}, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i := 0; i < w*h; i++ {
			copy(img.Pix[i*4:i*4+3], b.Buffer[i*3:i*3+3])
			img.Pix[i*4+3] = 0xFF
		}
		return img, nil
	case 4:
		return &image.NRGBA{Pix: b.Buffer, Stride: w * 4, Rect: rect}, nil
	}
	return nil, fmt.Errorf("%w: %d bands", ErrComponentCount, b.Bands)
}

// ComponentInfo describes one component as declared by the header.
type ComponentInfo struct {
	Width     uint32
	Height    uint32
	Precision uint32
	Signed    bool
}

// Info is the header metadata of an image, read without decoding pixels.
type Info struct {
	Codec      Codec
	Width      uint32
	Height     uint32
	Components []ComponentInfo
	ColorSpace ColorSpaceValue
}
