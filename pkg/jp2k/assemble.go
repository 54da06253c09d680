package jp2k

import (
	"fmt"
	"image"
	"math"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// Assemble interleaves decoded component planes into a packed buffer. One component
// is copied as a single band, three become RGB and four become RGBA; any other count
// fails with ErrComponentCount.
func Assemble(comps []engine.Component, width, height uint32) (*ImageBuffer, error) {
	bands := len(comps)
	switch bands {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("%w: %d", ErrComponentCount, bands)
	}
	pixels, err := planeLen(comps, width, height)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, pixels*bands)
	if bands == 1 {
		c := comps[0]
		for i, v := range c.Data[:pixels] {
			buf[i] = sample8(v, c.Prec, c.Signed)
		}
	} else {
		for b, c := range comps {
			data := c.Data[:pixels]
			for i, v := range data {
				buf[i*bands+b] = sample8(v, c.Prec, c.Signed)
			}
		}
	}
	return &ImageBuffer{Buffer: buf, Width: width, Height: height, Bands: bands}, nil
}

// AssembleRGBA builds a non-premultiplied RGBA image from up to four components,
// mapping each pixel through cs. Missing color slots read 0 and a missing alpha
// reads 255.
func AssembleRGBA(comps []engine.Component, width, height uint32, cs ColorSpace) (*image.NRGBA, error) {
	n := len(comps)
	if n == 0 || n > MaxComponents {
		return nil, fmt.Errorf("%w: %d", ErrComponentCount, n)
	}
	// surface an unimplemented conversion before touching any pixel
	if _, err := cs.ToRGBA([MaxComponents]uint8{0, 0, 0, 255}); err != nil {
		return nil, err
	}
	pixels, err := planeLen(comps, width, height)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	for i := 0; i < pixels; i++ {
		values := [MaxComponents]uint8{0, 0, 0, 255}
		for c := range comps {
			values[c] = sample8(comps[c].Data[i], comps[c].Prec, comps[c].Signed)
		}
		px, err := cs.ToRGBA(values)
		if err != nil {
			return nil, err
		}
		copy(img.Pix[i*4:i*4+4], px[:])
	}
	return img, nil
}

// planeLen validates that every plane is exactly width x height and holds that many
// samples. Planes are indexed with width as their stride, so any other geometry,
// such as a component reduced by a different factor, is rejected.
func planeLen(comps []engine.Component, width, height uint32) (int, error) {
	pixels := uint64(width) * uint64(height)
	if pixels > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %dx%d exceeds supported size", ErrBufferSize, width, height)
	}
	for i, c := range comps {
		if c.W != width || c.H != height {
			return 0, fmt.Errorf("%w: component %d is %dx%d, output is %dx%d", ErrBufferSize, i, c.W, c.H, width, height)
		}
		if uint64(len(c.Data)) < pixels {
			return 0, fmt.Errorf("%w: component %d has %d samples, need %d", ErrBufferSize, i, len(c.Data), pixels)
		}
	}
	return int(pixels), nil
}

// sample8 maps one sample to a byte. Signed samples are offset to unsigned,
// precisions above 8 bits keep their most significant 8 bits and precisions below
// 8 bits are scaled up to the full byte range.
func sample8(v int32, prec uint32, signed bool) uint8 {
	if signed && prec > 0 && prec <= 32 {
		v += int32(uint32(1) << (prec - 1))
	}
	switch {
	case prec > 8:
		v >>= prec - 8
	case prec > 0 && prec < 8:
		top := int32(1)<<prec - 1
		v = min(max(v, 0), top) * 255 / top
	}
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
