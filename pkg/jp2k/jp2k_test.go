package jp2k

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

func TestDetectCodec(t *testing.T) {
	c, ok := DetectCodec(append(append([]byte{}, jp2Signature...), 0, 0, 0, 0x14))
	assert.True(t, ok)
	assert.Equal(t, CodecJP2, c)

	c, ok = DetectCodec([]byte{0xFF, 0x4F, 0xFF, 0x51, 0x00, 0x2F})
	assert.True(t, ok)
	assert.Equal(t, CodecJ2K, c)

	c, ok = DetectCodec([]byte{0xFF, 0xD8, 0xFF})
	assert.False(t, ok)
	assert.Equal(t, engine.CodecUnknown, c)

	_, ok = DetectCodec(nil)
	assert.False(t, ok)
}

func TestParseCodec(t *testing.T) {
	for name, want := range map[string]Codec{
		"j2k": CodecJ2K, "J2C": CodecJ2K, "jpc": CodecJ2K, "jp2": CodecJP2,
		"jpx": CodecJPX, "jpf": CodecJPX, "jpt": CodecJPT, "JPP": CodecJPP,
	} {
		got, ok := ParseCodec(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := ParseCodec("png")
	assert.False(t, ok)
	assert.Equal(t, "JPX", CodecJPX.String())
}
