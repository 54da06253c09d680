package gojp2

import (
	"fmt"
	"image"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// splitPlanes copies the window win of a decoded image into n component planes.
// 8-bit outputs yield 8-bit planes and 16-bit outputs 16-bit planes.
func splitPlanes(m image.Image, n int, win image.Rectangle) ([]engine.Component, error) {
	bounds := m.Bounds()
	win = win.Add(bounds.Min).Intersect(bounds)
	if win.Empty() {
		return nil, fmt.Errorf("decode window lies outside the decoded %dx%d image", bounds.Dx(), bounds.Dy())
	}
	w, h := win.Dx(), win.Dy()
	planes := make([]engine.Component, n)
	for c := range planes {
		planes[c] = engine.Component{W: uint32(w), H: uint32(h), Data: make([]int32, w*h)}
	}

	var prec uint32
	switch src := m.(type) {
	case *image.Gray:
		if n != 1 {
			return nil, fmt.Errorf("decoded gray image for %d components", n)
		}
		prec = 8
		for y := 0; y < h; y++ {
			off := src.PixOffset(win.Min.X, win.Min.Y+y)
			for x := 0; x < w; x++ {
				planes[0].Data[y*w+x] = int32(src.Pix[off+x])
			}
		}
	case *image.Gray16:
		if n != 1 {
			return nil, fmt.Errorf("decoded gray image for %d components", n)
		}
		prec = 16
		for y := 0; y < h; y++ {
			off := src.PixOffset(win.Min.X, win.Min.Y+y)
			for x := 0; x < w; x++ {
				p := src.Pix[off+2*x:]
				planes[0].Data[y*w+x] = int32(p[0])<<8 | int32(p[1])
			}
		}
	case *image.RGBA:
		if n != 3 && n != 4 {
			return nil, fmt.Errorf("decoded color image for %d components", n)
		}
		prec = 8
		for y := 0; y < h; y++ {
			off := src.PixOffset(win.Min.X, win.Min.Y+y)
			for x := 0; x < w; x++ {
				p := src.Pix[off+4*x:]
				for c := 0; c < n; c++ {
					planes[c].Data[y*w+x] = int32(p[c])
				}
			}
		}
	case *image.RGBA64:
		if n != 3 && n != 4 {
			return nil, fmt.Errorf("decoded color image for %d components", n)
		}
		prec = 16
		for y := 0; y < h; y++ {
			off := src.PixOffset(win.Min.X, win.Min.Y+y)
			for x := 0; x < w; x++ {
				p := src.Pix[off+8*x:]
				for c := 0; c < n; c++ {
					planes[c].Data[y*w+x] = int32(p[2*c])<<8 | int32(p[2*c+1])
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported decoded image type %T", m)
	}
	for c := range planes {
		planes[c].Prec = prec
	}
	return planes, nil
}
