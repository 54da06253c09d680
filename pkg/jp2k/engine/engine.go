// Package engine describes the capability contract of a JPEG 2000 decoding engine.
//
// An engine is a black box with a handle-based, callback-driven API modeled on
// libopenjp2: a decoder handle is created and configured, a stream handle feeds it
// bytes through a read callback, a header read yields an image handle, and decode
// fills the image's component planes. Every handle is owned by the caller that
// created it and must be destroyed exactly once through the engine that made it.
package engine

// Codec selects the codestream family a decoder understands.
// Values match OPJ_CODEC_FORMAT.
type Codec int32

const (
	CodecUnknown Codec = -1
	CodecJ2K     Codec = 0 // raw codestream
	CodecJPT     Codec = 1 // JPT-stream (JPIP)
	CodecJP2     Codec = 2 // JP2 file format
	CodecJPP     Codec = 3 // JPP-stream (JPIP)
	CodecJPX     Codec = 4 // JPX file format (Part 2)
)

func (c Codec) String() string {
	switch c {
	case CodecJ2K:
		return "J2K"
	case CodecJPT:
		return "JPT"
	case CodecJP2:
		return "JP2"
	case CodecJPP:
		return "JPP"
	case CodecJPX:
		return "JPX"
	default:
		return "UNKNOWN"
	}
}

// Raw color space codes as reported by an engine. Values match OPJ_COLOR_SPACE;
// engines may report other codes, which callers treat as unknown.
const (
	ColorSpaceUnknown     int32 = -1
	ColorSpaceUnspecified int32 = 0
	ColorSpaceSRGB        int32 = 1
	ColorSpaceGray        int32 = 2
	ColorSpaceSYCC        int32 = 3
	ColorSpaceEYCC        int32 = 4
	ColorSpaceCMYK        int32 = 5
)

// Params are the engine-native decoder parameters.
type Params struct {
	Reduce uint32 // resolution levels to discard, 0 = full resolution
	Layers uint32 // quality layers to decode, 0 = all
	Dump   bool   // header inspection only, no pixel decode will follow
}

// Decoder is an opaque decoder handle.
type Decoder any

// Stream is an opaque stream handle.
type Stream any

// Rect is an image bounding box on the full-resolution reference grid.
type Rect struct {
	X0, Y0, X1, Y1 uint32
}

// Component describes one decoded component plane. Data is only populated after a
// successful Decode and is only valid until the owning Image is destroyed.
type Component struct {
	W, H   uint32
	Factor uint32 // resolution reduction actually applied
	Prec   uint32
	Signed bool
	Data   []int32
}

// Image is a decoded-image handle produced by ReadHeader.
type Image interface {
	Bounds() Rect
	ColorSpace() int32
	Components() []Component
}

// ReadFunc fills p with up to len(p) bytes and returns the count; 0 means no more data.
type ReadFunc func(p []byte) int

// ReleaseFunc reclaims the state behind a ReadFunc. Engines call it once, when the
// stream is destroyed, and never when stream creation fails.
type ReleaseFunc func()

// Engine is the decoding capability. Boolean results report success; nil handles
// report creation failure.
type Engine interface {
	Name() string
	CreateDecoder(codec Codec) Decoder
	SetupDecoder(d Decoder, p Params) bool
	SetThreadCount(d Decoder, n int) bool
	CreateMemoryStream(length uint64, read ReadFunc, release ReleaseFunc) Stream
	CreateFileStream(path string) Stream
	ReadHeader(s Stream, d Decoder) (Image, bool)
	SetDecodeArea(d Decoder, img Image, x0, y0, x1, y1 int32) bool
	Decode(d Decoder, s Stream, img Image) bool
	DestroyStream(s Stream)
	DestroyDecoder(d Decoder)
	DestroyImage(img Image)
}

// Severity of an engine message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// ReportFunc receives engine messages for one decoder.
type ReportFunc func(sev Severity, msg string)

// Reporter is implemented by engines that can route their diagnostics to the caller.
type Reporter interface {
	SetReporter(d Decoder, fn ReportFunc)
}
