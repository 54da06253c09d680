// Package gojp2 is a pure-Go decoding engine built on github.com/mrjoshuak/go-jpeg2000.
//
// It follows libopenjp2's handle semantics so the two engines are interchangeable:
// ReadHeader drains the stream and parses the main header, SetDecodeArea validates
// and records a window on the full-resolution grid, and Decode fills one plane per
// component at the requested reduction.
package gojp2

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	jpeg2000 "github.com/mrjoshuak/go-jpeg2000"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// chunkSize is how much ReadHeader asks a stream for per read.
const chunkSize = 1 << 16

// Engine implements engine.Engine and engine.Reporter.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "gojp2" }

type decoder struct {
	codec   engine.Codec
	params  engine.Params
	ready   bool
	threads int
	data    []byte
	meta    *jpeg2000.Metadata
	report  engine.ReportFunc
}

func (d *decoder) errorf(format string, args ...any) {
	if d.report != nil {
		d.report(engine.SeverityError, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) warnf(format string, args ...any) {
	if d.report != nil {
		d.report(engine.SeverityWarning, fmt.Sprintf(format, args...))
	}
}

type stream struct {
	length    uint64
	read      engine.ReadFunc
	release   engine.ReleaseFunc
	file      *os.File
	destroyed bool
}

// pull reads the whole stream. A memory stream ends at the first zero-length read.
func (s *stream) pull() ([]byte, error) {
	if s.file != nil {
		return io.ReadAll(s.file)
	}
	buf := make([]byte, 0, s.length)
	chunk := make([]byte, chunkSize)
	for {
		n := s.read(chunk)
		if n <= 0 {
			return buf, nil
		}
		buf = append(buf, chunk[:n]...)
	}
}

type img struct {
	bounds     engine.Rect
	colorSpace int32
	comps      []engine.Component
	destroyed  bool
}

func (i *img) Bounds() engine.Rect            { return i.bounds }
func (i *img) ColorSpace() int32              { return i.colorSpace }
func (i *img) Components() []engine.Component { return i.comps }

// CreateDecoder supports J2K, JP2 and JPX; JPIP streams have no decoder.
func (e *Engine) CreateDecoder(codec engine.Codec) engine.Decoder {
	switch codec {
	case engine.CodecJ2K, engine.CodecJP2, engine.CodecJPX:
		return &decoder{codec: codec}
	}
	return nil
}

func (e *Engine) SetReporter(d engine.Decoder, fn engine.ReportFunc) {
	if dec, ok := d.(*decoder); ok {
		dec.report = fn
	}
}

// SetupDecoder records p once. go-jpeg2000 always decodes every quality layer, so a
// layer cap is reported as a warning and has no effect.
func (e *Engine) SetupDecoder(d engine.Decoder, p engine.Params) bool {
	dec, ok := d.(*decoder)
	if !ok || dec.ready {
		return false
	}
	if p.Layers > 0 {
		dec.warnf("quality layer cap %d is not supported, decoding all layers", p.Layers)
	}
	dec.params = p
	dec.ready = true
	return true
}

// SetThreadCount accepts any non-negative hint; decoding runs on the calling goroutine
// and hints above one are reported as a warning.
func (e *Engine) SetThreadCount(d engine.Decoder, n int) bool {
	dec, ok := d.(*decoder)
	if !ok || n < 0 {
		return false
	}
	if n > 1 {
		dec.warnf("decoding is single threaded, thread count %d ignored", n)
	}
	dec.threads = n
	return true
}

func (e *Engine) CreateMemoryStream(length uint64, read engine.ReadFunc, release engine.ReleaseFunc) engine.Stream {
	if read == nil {
		return nil
	}
	return &stream{length: length, read: read, release: release}
}

func (e *Engine) CreateFileStream(path string) engine.Stream {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil
	}
	return &stream{length: uint64(st.Size()), file: f}
}

func (e *Engine) ReadHeader(s engine.Stream, d engine.Decoder) (engine.Image, bool) {
	st, ok := s.(*stream)
	dec, ok2 := d.(*decoder)
	if !ok || !ok2 || st.destroyed || !dec.ready || dec.meta != nil {
		return nil, false
	}
	data, err := st.pull()
	if err != nil {
		dec.errorf("reading stream: %v", err)
		return nil, false
	}
	if err := checkFormat(dec.codec, data); err != nil {
		dec.errorf("%v", err)
		return nil, false
	}
	meta, err := jpeg2000.DecodeMetadata(bytes.NewReader(data))
	if err != nil {
		dec.errorf("reading header: %v", err)
		return nil, false
	}
	if meta.NumResolutions > 0 && int(dec.params.Reduce) >= meta.NumResolutions {
		dec.errorf("reduce factor %d must be below the number of resolutions %d", dec.params.Reduce, meta.NumResolutions)
		return nil, false
	}
	dec.data = data
	dec.meta = meta

	out := &img{
		bounds:     engine.Rect{X1: uint32(meta.Width), Y1: uint32(meta.Height)},
		colorSpace: int32(meta.ColorSpace),
		comps:      make([]engine.Component, meta.NumComponents),
	}
	for i := range out.comps {
		out.comps[i] = engine.Component{
			W:      uint32(meta.Width),
			H:      uint32(meta.Height),
			Prec:   uint32(meta.BitsPerComponent[i]),
			Signed: meta.Signed[i],
		}
	}
	return out, true
}

func checkFormat(codec engine.Codec, data []byte) error {
	isJP2 := len(data) >= 12 && bytes.Equal(data[4:8], []byte("jP  "))
	isJ2K := len(data) >= 2 && data[0] == 0xFF && data[1] == 0x4F
	switch {
	case codec == engine.CodecJ2K && !isJ2K:
		return fmt.Errorf("expected a J2K codestream")
	case codec != engine.CodecJ2K && !isJP2:
		return fmt.Errorf("expected a %s signature box", codec)
	}
	return nil
}

// SetDecodeArea restricts decoding to a window of the image. All zeros selects the
// whole image. The image bounds become the window.
func (e *Engine) SetDecodeArea(d engine.Decoder, im engine.Image, x0, y0, x1, y1 int32) bool {
	dec, ok := d.(*decoder)
	out, ok2 := im.(*img)
	if !ok || !ok2 || dec.meta == nil || out.destroyed {
		return false
	}
	if x0 == 0 && y0 == 0 && x1 == 0 && y1 == 0 {
		return true
	}
	w, h := int32(dec.meta.Width), int32(dec.meta.Height)
	switch {
	case x0 < 0 || y0 < 0 || x1 < 0 || y1 < 0:
		dec.errorf("decode area (%d,%d,%d,%d) has negative coordinates", x0, y0, x1, y1)
		return false
	case x0 >= x1 || y0 >= y1:
		dec.errorf("decode area (%d,%d,%d,%d) is empty", x0, y0, x1, y1)
		return false
	case x1 > w || y1 > h:
		dec.errorf("decode area (%d,%d,%d,%d) exceeds image %dx%d", x0, y0, x1, y1, w, h)
		return false
	}
	out.bounds = engine.Rect{X0: uint32(x0), Y0: uint32(y0), X1: uint32(x1), Y1: uint32(y1)}
	return true
}

func (e *Engine) Decode(d engine.Decoder, s engine.Stream, im engine.Image) bool {
	dec, ok := d.(*decoder)
	st, ok2 := s.(*stream)
	out, ok3 := im.(*img)
	if !ok || !ok2 || !ok3 || dec.meta == nil || st.destroyed || out.destroyed {
		return false
	}
	cfg := &jpeg2000.Config{
		ReduceResolution: int(dec.params.Reduce),
		QualityLayers:    int(dec.params.Layers),
	}
	decoded, err := jpeg2000.DecodeConfig(bytes.NewReader(dec.data), cfg)
	if err != nil {
		dec.errorf("decoding: %v", err)
		return false
	}
	planes, err := splitPlanes(decoded, len(out.comps), dec.window(out.bounds))
	if err != nil {
		dec.errorf("%v", err)
		return false
	}
	for i := range out.comps {
		out.comps[i] = planes[i]
		out.comps[i].Factor = dec.params.Reduce
	}
	return true
}

// window maps the image bounds onto the reduced grid: the origin is floored and the
// size is ceil(size / 2^reduce).
func (d *decoder) window(b engine.Rect) image.Rectangle {
	r := d.params.Reduce
	ceil := func(u uint32) int { return int((uint64(u) + (1 << r) - 1) >> r) }
	x0, y0 := int(b.X0>>r), int(b.Y0>>r)
	return image.Rect(x0, y0, x0+ceil(b.X1-b.X0), y0+ceil(b.Y1-b.Y0))
}

func (e *Engine) DestroyStream(s engine.Stream) {
	st, ok := s.(*stream)
	if !ok || st.destroyed {
		return
	}
	st.destroyed = true
	if st.file != nil {
		st.file.Close()
	}
	if st.release != nil {
		st.release()
	}
	st.read = nil
}

func (e *Engine) DestroyDecoder(d engine.Decoder) {
	if dec, ok := d.(*decoder); ok {
		dec.data = nil
		dec.meta = nil
		dec.report = nil
		dec.ready = false
	}
}

func (e *Engine) DestroyImage(im engine.Image) {
	if out, ok := im.(*img); ok {
		out.destroyed = true
		out.comps = nil
	}
}
