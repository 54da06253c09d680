package jp2k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

func TestColorSpaceFromCode(t *testing.T) {
	tests := []struct {
		code int32
		want string
	}{
		{engine.ColorSpaceSRGB, "SRGB"},
		{engine.ColorSpaceGray, "GRAY"},
		{engine.ColorSpaceSYCC, "SYCC"},
		{engine.ColorSpaceEYCC, "EYCC"},
		{engine.ColorSpaceCMYK, "CMYK"},
		{engine.ColorSpaceUnspecified, "UNSPECIFIED"},
		{engine.ColorSpaceUnknown, "UNKNOWN(-1)"},
		{42, "UNKNOWN(42)"},
	}
	for _, tt := range tests {
		v := ColorSpaceFromCode(tt.code)
		assert.Equal(t, tt.want, v.String())
		assert.Equal(t, tt.code, v.Code())
	}
	assert.True(t, ColorSpaceFromCode(0).IsUnspecified())
	assert.False(t, ColorSpaceFromCode(0).IsUnknown())
	assert.True(t, ColorSpaceFromCode(9).IsUnknown())
	cs, ok := ColorSpaceFromCode(engine.ColorSpaceGray).Determined()
	assert.True(t, ok)
	assert.Equal(t, ColorSpaceGray, cs)
}

func TestResolveColorSpace(t *testing.T) {
	fallback := DecodeParams{}.WithDefaultColorSpace(ColorSpaceSRGB)

	cs, err := ResolveColorSpace(ColorSpaceFromCode(engine.ColorSpaceGray), fallback)
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceGray, cs, "reported space wins over the fallback")

	cs, err = ResolveColorSpace(ColorSpaceFromCode(engine.ColorSpaceUnspecified), fallback)
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceSRGB, cs)

	cs, err = ResolveColorSpace(ColorSpaceFromCode(77), fallback)
	require.NoError(t, err)
	assert.Equal(t, ColorSpaceSRGB, cs)

	_, err = ResolveColorSpace(ColorSpaceFromCode(engine.ColorSpaceUnspecified), DecodeParams{})
	assert.ErrorIs(t, err, ErrColorSpaceUnspecified)

	_, err = ResolveColorSpace(ColorSpaceFromCode(77), DecodeParams{})
	assert.ErrorIs(t, err, ErrColorSpaceUnknown)
	assert.Contains(t, err.Error(), "77")
}

func TestParseColorSpace(t *testing.T) {
	for name, want := range map[string]ColorSpace{
		"srgb": ColorSpaceSRGB, "RGB": ColorSpaceSRGB, "gray": ColorSpaceGray, "grey": ColorSpaceGray,
		"sycc": ColorSpaceSYCC, "eycc": ColorSpaceEYCC, "cmyk": ColorSpaceCMYK,
	} {
		got, err := ParseColorSpace(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseColorSpace("lab")
	assert.Error(t, err)
}
