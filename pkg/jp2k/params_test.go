package jp2k

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

func TestDecodeParams_ZeroValue(t *testing.T) {
	var p DecodeParams
	_, ok := p.ReduceFactor()
	assert.False(t, ok)
	_, ok = p.QualityLayers()
	assert.False(t, ok)
	_, ok = p.DecodingArea()
	assert.False(t, ok)
	_, ok = p.NumThreads()
	assert.False(t, ok)
	_, ok = p.DefaultColorSpace()
	assert.False(t, ok)
	assert.Equal(t, engine.Params{}, p.engineParams())
}

func TestDecodeParams_Copies(t *testing.T) {
	base := DecodeParams{}.WithReduceFactor(2)
	derived := base.WithQualityLayers(3).WithDecodingArea(1, 2, 3, 4).WithNumThreads(8).
		WithDefaultColorSpace(ColorSpaceGray)

	_, ok := base.QualityLayers()
	assert.False(t, ok, "setters must not modify the receiver")

	r, ok := derived.ReduceFactor()
	assert.True(t, ok)
	assert.Equal(t, uint32(2), r)
	l, _ := derived.QualityLayers()
	assert.Equal(t, uint32(3), l)
	a, _ := derived.DecodingArea()
	assert.Equal(t, Area{X0: 1, Y0: 2, X1: 3, Y1: 4}, a)
	n, _ := derived.NumThreads()
	assert.Equal(t, 8, n)
	cs, _ := derived.DefaultColorSpace()
	assert.Equal(t, ColorSpaceGray, cs)

	assert.Equal(t, engine.Params{Reduce: 2, Layers: 3}, derived.engineParams())
}

func TestDecodeParams_NoValidation(t *testing.T) {
	a, ok := DecodeParams{}.WithDecodingArea(10, 10, -5, 0).DecodingArea()
	assert.True(t, ok)
	assert.Equal(t, int32(-5), a.X1)
}

func TestDecodeParams_LogValue(t *testing.T) {
	v := DecodeParams{}.WithReduceFactor(1).WithNumThreads(4).LogValue()
	attrs := v.Group()
	assert.Len(t, attrs, 2)
	assert.Equal(t, "reduce", attrs[0].Key)
	assert.Equal(t, "threads", attrs[1].Key)
}
