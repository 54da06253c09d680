package jp2k

import (
	"context"
	"image"
	"log/slog"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
	"github.com/jpfielding/jp2k.go/pkg/jp2k/gojp2"
	"github.com/jpfielding/jp2k.go/pkg/logging"
	"github.com/jpfielding/jp2k.go/pkg/util"
)

// DefaultEngine is used by the package level helpers.
var DefaultEngine engine.Engine = gojp2.New()

// Decoder runs decodes of one codec family with fixed parameters. It holds no engine
// handles between calls, so one Decoder may serve concurrent calls; each call builds
// and tears down its own handle set.
type Decoder struct {
	Engine engine.Engine
	Codec  Codec
	Params DecodeParams
}

// New returns a Decoder; a nil engine selects DefaultEngine.
func New(e engine.Engine, codec Codec, params DecodeParams) *Decoder {
	if e == nil {
		e = DefaultEngine
	}
	return &Decoder{Engine: e, Codec: codec, Params: params}
}

// Buffer decodes src into a packed buffer with one band per component.
func (d *Decoder) Buffer(ctx context.Context, src Source) (*ImageBuffer, error) {
	s, err := d.run(ctx, src, false)
	if err != nil {
		return nil, err
	}
	defer s.close()

	comps := s.image.Components()
	width, height, err := s.outputSize(comps)
	if err != nil {
		return nil, err
	}
	buf, err := Assemble(comps, width, height)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(s.ctx, "jp2k buffer assembled", "width", width, "height", height, "bands", buf.Bands)
	return buf, nil
}

// Image decodes src into an RGBA image, converting through the resolved color space.
func (d *Decoder) Image(ctx context.Context, src Source) (*image.NRGBA, error) {
	s, err := d.run(ctx, src, false)
	if err != nil {
		return nil, err
	}
	defer s.close()

	raw := ColorSpaceFromCode(s.image.ColorSpace())
	cs, err := ResolveColorSpace(raw, d.Params)
	if err != nil {
		return nil, err
	}
	comps := s.image.Components()
	width, height, err := s.outputSize(comps)
	if err != nil {
		return nil, err
	}
	img, err := AssembleRGBA(comps, width, height, cs)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(s.ctx, "jp2k image assembled", "width", width, "height", height, "reported", raw, "colorspace", cs)
	return img, nil
}

// Info reads only the header of src.
func (d *Decoder) Info(ctx context.Context, src Source) (*Info, error) {
	s, err := d.run(ctx, src, true)
	if err != nil {
		return nil, err
	}
	defer s.close()

	b := s.image.Bounds()
	info := &Info{
		Codec:      d.Codec,
		Width:      span(b.X0, b.X1),
		Height:     span(b.Y0, b.Y1),
		ColorSpace: ColorSpaceFromCode(s.image.ColorSpace()),
	}
	for _, c := range s.image.Components() {
		info.Components = append(info.Components, ComponentInfo{
			Width:     c.W,
			Height:    c.H,
			Precision: c.Prec,
			Signed:    c.Signed,
		})
	}
	return info, nil
}

// DecodeBytes decodes b with DefaultEngine into a packed buffer.
func DecodeBytes(b []byte, codec Codec, params DecodeParams) (*ImageBuffer, error) {
	return New(nil, codec, params).Buffer(context.Background(), Bytes(b))
}

// DecodeFile decodes the file at path with DefaultEngine into a packed buffer.
func DecodeFile(path string, codec Codec, params DecodeParams) (*ImageBuffer, error) {
	return New(nil, codec, params).Buffer(context.Background(), File(path))
}

// LoadBytes decodes b with DefaultEngine into an RGBA image.
func LoadBytes(b []byte, codec Codec, params DecodeParams) (*image.NRGBA, error) {
	return New(nil, codec, params).Image(context.Background(), Bytes(b))
}

// LoadFile decodes the file at path with DefaultEngine into an RGBA image.
func LoadFile(path string, codec Codec, params DecodeParams) (*image.NRGBA, error) {
	return New(nil, codec, params).Image(context.Background(), File(path))
}

// ReadInfo reads the header of the file at path with DefaultEngine.
func ReadInfo(path string, codec Codec) (*Info, error) {
	return New(nil, codec, DecodeParams{}).Info(context.Background(), File(path))
}

// session owns the handles of one decode. close destroys them Stream, then Decoder,
// then Image, each at most once.
type session struct {
	ctx     context.Context
	eng     engine.Engine
	stream  *Stream
	codec   engine.Decoder
	image   engine.Image
	lastErr string
}

// run walks the engine through setup, header read and, unless header is set,
// area selection and decode. On failure every handle acquired so far is destroyed
// before the error is returned.
func (d *Decoder) run(ctx context.Context, src Source, header bool) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	eng := d.Engine
	if eng == nil {
		eng = DefaultEngine
	}
	ctx = logging.AppendCtx(ctx, slog.Group("jp2k",
		slog.String("session", util.SessionID()),
		slog.String("engine", eng.Name()),
		slog.String("codec", d.Codec.String()),
	))
	s := &session{ctx: ctx, eng: eng}

	stream, err := src.Open(eng)
	if err != nil {
		slog.WarnContext(ctx, "jp2k stream open failed", "source", src.String(), "error", err)
		return nil, err
	}
	s.stream = stream

	codec := eng.CreateDecoder(d.Codec)
	if codec == nil {
		return nil, s.fail("create_decompress", ErrDecoderCreate)
	}
	s.codec = codec
	if r, ok := eng.(engine.Reporter); ok {
		r.SetReporter(codec, s.report)
	}

	params := d.Params.engineParams()
	params.Dump = header
	if !eng.SetupDecoder(codec, params) {
		return nil, s.fail("setup_decoder", ErrDecoderSetup)
	}
	if n, ok := d.Params.NumThreads(); ok && !header {
		if !eng.SetThreadCount(codec, n) {
			return nil, s.fail("set_threads", ErrThreads)
		}
	}

	img, ok := eng.ReadHeader(stream.Handle(), codec)
	if img != nil {
		s.image = img
	}
	if !ok || img == nil {
		return nil, s.fail("read_header", ErrReadHeader)
	}
	b := img.Bounds()
	slog.DebugContext(ctx, "jp2k header read", "source", src.String(),
		"x0", b.X0, "y0", b.Y0, "x1", b.X1, "y1", b.Y1, "components", len(img.Components()))
	if header {
		return s, nil
	}

	if a, ok := d.Params.DecodingArea(); ok {
		if !eng.SetDecodeArea(codec, img, a.X0, a.Y0, a.X1, a.Y1) {
			return nil, s.fail("set_decode_area", ErrDecodeArea)
		}
	}
	if !eng.Decode(codec, stream.Handle(), img) {
		return nil, s.fail("decode", ErrDecode)
	}
	slog.DebugContext(ctx, "jp2k decoded", "params", d.Params)
	return s, nil
}

// outputSize applies the first component's achieved reduction to the image bounds.
func (s *session) outputSize(comps []engine.Component) (uint32, uint32, error) {
	if len(comps) == 0 {
		return 0, 0, ErrComponentCount
	}
	factor := comps[0].Factor
	for i, c := range comps[1:] {
		if c.Factor != factor {
			slog.WarnContext(s.ctx, "jp2k components reduced unevenly, using the first",
				"component", i+1, "factor", c.Factor, "first", factor)
		}
	}
	b := s.image.Bounds()
	return EffectiveDimension(span(b.X0, b.X1), factor), EffectiveDimension(span(b.Y0, b.Y1), factor), nil
}

func (s *session) report(sev engine.Severity, msg string) {
	switch sev {
	case engine.SeverityError:
		s.lastErr = msg
		slog.ErrorContext(s.ctx, "jp2k engine", "msg", msg)
	case engine.SeverityWarning:
		slog.WarnContext(s.ctx, "jp2k engine", "msg", msg)
	default:
		slog.DebugContext(s.ctx, "jp2k engine", "msg", msg)
	}
}

func (s *session) fail(step string, kind error) error {
	err := &EngineError{Step: step, Engine: s.eng.Name(), Message: s.lastErr, Err: kind}
	slog.WarnContext(s.ctx, "jp2k decode failed", "step", step, "error", err)
	s.close()
	return err
}

func (s *session) close() {
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	if s.codec != nil {
		s.eng.DestroyDecoder(s.codec)
		s.codec = nil
	}
	if s.image != nil {
		s.eng.DestroyImage(s.image)
		s.image = nil
	}
}

func span(lo, hi uint32) uint32 {
	if hi < lo {
		return 0
	}
	return hi - lo
}
