package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	jpeg2000 "github.com/mrjoshuak/go-jpeg2000"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jpfielding/jp2k.go/pkg/jp2k"
)

func writeFixture(t *testing.T, format jpeg2000.Format, name string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x ^ y)})
		}
	}
	opts := jpeg2000.DefaultOptions()
	opts.Format = format
	opts.Lossless = true
	opts.NumResolutions = 4
	var buf bytes.Buffer
	require.NoError(t, jpeg2000.Encode(&buf, img, opts))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(context.Background(), "test-sha")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseArea(t *testing.T) {
	a, err := parseArea("1, 2,30,40")
	require.NoError(t, err)
	assert.Equal(t, jp2k.Area{X0: 1, Y0: 2, X1: 30, Y1: 40}, a)

	_, err = parseArea("1,2,3")
	assert.Error(t, err)
	_, err = parseArea("1,2,3,x")
	assert.Error(t, err)
}

func TestSelectCodec(t *testing.T) {
	c, err := selectCodec("auto", []byte{0xFF, 0x4F, 0xFF, 0x51})
	require.NoError(t, err)
	assert.Equal(t, jp2k.CodecJ2K, c)

	c, err = selectCodec("jp2", nil)
	require.NoError(t, err)
	assert.Equal(t, jp2k.CodecJP2, c)

	_, err = selectCodec("auto", []byte("GIF89a"))
	assert.Error(t, err)
	_, err = selectCodec("webp", nil)
	assert.Error(t, err)
}

func TestSelectEngine(t *testing.T) {
	e, err := selectEngine("go")
	require.NoError(t, err)
	assert.Equal(t, "gojp2", e.Name())

	_, err = selectEngine("kakadu")
	assert.Error(t, err)
}

func TestEncodeImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.Pix = []uint8{1, 2, 3, 4, 5, 6}

	var buf bytes.Buffer
	require.NoError(t, encodeImage(&buf, "png", img, img.Pix))
	got, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	buf.Reset()
	require.NoError(t, encodeImage(&buf, "tiff", img, img.Pix))
	got, err = tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	buf.Reset()
	require.NoError(t, encodeImage(&buf, "bmp", img, img.Pix))
	got, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())

	buf.Reset()
	require.NoError(t, encodeImage(&buf, "raw", img, img.Pix))
	assert.Equal(t, img.Pix, buf.Bytes())

	assert.Error(t, encodeImage(&buf, "gif", img, img.Pix))
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "test-sha\n", out)
}

func TestDecodeCmd(t *testing.T) {
	in := writeFixture(t, jpeg2000.FormatJ2K, "gray.j2k")
	out := filepath.Join(t.TempDir(), "gray.png")

	_, err := run(t, "decode", "--in", in, "--out", out, "--reduce", "1", "--area", "0,0,64,32")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestDecodeCmd_RGBARequiresColorSpace(t *testing.T) {
	in := writeFixture(t, jpeg2000.FormatJ2K, "gray.j2k")
	_, err := run(t, "decode", "--in", in, "--format", "raw", "--out", filepath.Join(t.TempDir(), "x.raw"), "--rgba")
	require.ErrorIs(t, err, jp2k.ErrColorSpaceUnspecified)

	out := filepath.Join(t.TempDir(), "gray.raw")
	_, err = run(t, "decode", "--in", in, "--format", "raw", "--out", out, "--rgba", "--default-colorspace", "gray")
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, raw, 64*64*4)
}

func TestInfoCmd(t *testing.T) {
	in := writeFixture(t, jpeg2000.FormatJP2, "gray.jp2")
	out, err := run(t, "info", "--in", "file://"+in, "--format", "json")
	require.NoError(t, err)

	var report infoReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "JP2", report.Codec)
	assert.Equal(t, uint32(64), report.Width)
	assert.Equal(t, "GRAY", report.ColorSpace)
	require.Len(t, report.Components, 1)
	assert.Len(t, report.MD5, 32)
	assert.NotEmpty(t, report.Fingerprint)
}
