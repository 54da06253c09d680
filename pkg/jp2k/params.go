package jp2k

import (
	"log/slog"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

type optional[T any] struct {
	v  T
	ok bool
}

func some[T any](v T) optional[T] { return optional[T]{v: v, ok: true} }

func (o optional[T]) get() (T, bool) { return o.v, o.ok }

// Area is a decoding window in full-resolution coordinates; width = X1-X0.
type Area struct {
	X0, Y0, X1, Y1 int32
}

// DecodeParams configures one decode. The zero value leaves every setting to the
// engine. Setters return modified copies and never validate; bad values are
// rejected by the engine at the corresponding step.
type DecodeParams struct {
	defaultColorSpace optional[ColorSpace]
	reduceFactor      optional[uint32]
	decodingArea      optional[Area]
	qualityLayers     optional[uint32]
	numThreads        optional[int]
}

// WithDefaultColorSpace is used when the engine cannot determine the color space.
func (p DecodeParams) WithDefaultColorSpace(cs ColorSpace) DecodeParams {
	p.defaultColorSpace = some(cs)
	return p
}

// WithReduceFactor scales the image to ceil(dim / 2^factor).
func (p DecodeParams) WithReduceFactor(factor uint32) DecodeParams {
	p.reduceFactor = some(factor)
	return p
}

// WithDecodingArea crops to the given window, with width x1-x0 and height y1-y0.
func (p DecodeParams) WithDecodingArea(x0, y0, x1, y1 int32) DecodeParams {
	p.decodingArea = some(Area{X0: x0, Y0: y0, X1: x1, Y1: y1})
	return p
}

// WithQualityLayers decodes only the first n quality layers.
func (p DecodeParams) WithQualityLayers(n uint32) DecodeParams {
	p.qualityLayers = some(n)
	return p
}

// WithNumThreads hints the engine's internal parallelism.
func (p DecodeParams) WithNumThreads(n int) DecodeParams {
	p.numThreads = some(n)
	return p
}

func (p DecodeParams) DefaultColorSpace() (ColorSpace, bool) { return p.defaultColorSpace.get() }
func (p DecodeParams) ReduceFactor() (uint32, bool)          { return p.reduceFactor.get() }
func (p DecodeParams) DecodingArea() (Area, bool)            { return p.decodingArea.get() }
func (p DecodeParams) QualityLayers() (uint32, bool)         { return p.qualityLayers.get() }
func (p DecodeParams) NumThreads() (int, bool)               { return p.numThreads.get() }

// engineParams resolves the settings the engine consumes at setup time.
func (p DecodeParams) engineParams() engine.Params {
	var ep engine.Params
	if r, ok := p.reduceFactor.get(); ok {
		ep.Reduce = r
	}
	if l, ok := p.qualityLayers.get(); ok {
		ep.Layers = l
	}
	return ep
}

// LogValue implements slog.LogValuer.
func (p DecodeParams) LogValue() slog.Value {
	var attrs []slog.Attr
	if r, ok := p.reduceFactor.get(); ok {
		attrs = append(attrs, slog.Any("reduce", r))
	}
	if l, ok := p.qualityLayers.get(); ok {
		attrs = append(attrs, slog.Any("layers", l))
	}
	if a, ok := p.decodingArea.get(); ok {
		attrs = append(attrs, slog.Any("area", []int32{a.X0, a.Y0, a.X1, a.Y1}))
	}
	if n, ok := p.numThreads.get(); ok {
		attrs = append(attrs, slog.Int("threads", n))
	}
	if cs, ok := p.defaultColorSpace.get(); ok {
		attrs = append(attrs, slog.String("default_colorspace", cs.String()))
	}
	return slog.GroupValue(attrs...)
}
