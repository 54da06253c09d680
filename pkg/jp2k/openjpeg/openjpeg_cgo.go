//go:build openjpeg && cgo

package openjpeg

/*
#cgo pkg-config: libopenjp2
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#ifndef __has_include
#define __has_include(x) 0
#endif
#if __has_include(<openjpeg-2.5/openjpeg.h>)
#include <openjpeg-2.5/openjpeg.h>
#elif __has_include(<openjpeg-2.4/openjpeg.h>)
#include <openjpeg-2.4/openjpeg.h>
#elif __has_include(<openjpeg-2.3/openjpeg.h>)
#include <openjpeg-2.3/openjpeg.h>
#else
#include <openjpeg.h>
#endif

size_t goOpenJPEGRead(void *slot, void *buf, size_t n);
void goOpenJPEGRelease(void *slot);
void goOpenJPEGMessage(void *slot, int severity, char *msg);

// libopenjp2 reads (OPJ_SIZE_T)-1 as end of stream; the Go side returns 0.
static OPJ_SIZE_T jp2k_stream_read(void *buf, OPJ_SIZE_T n, void *slot) {
	size_t got = goOpenJPEGRead(slot, buf, (size_t)n);
	if (got == 0) {
		return (OPJ_SIZE_T)-1;
	}
	return (OPJ_SIZE_T)got;
}

// forward skips are served by reading and discarding
static OPJ_OFF_T jp2k_stream_skip(OPJ_OFF_T n, void *slot) {
	char scratch[4096];
	OPJ_OFF_T done = 0;
	while (done < n) {
		OPJ_OFF_T want = n - done;
		if (want > (OPJ_OFF_T)sizeof(scratch)) {
			want = (OPJ_OFF_T)sizeof(scratch);
		}
		size_t got = goOpenJPEGRead(slot, scratch, (size_t)want);
		if (got == 0) {
			break;
		}
		done += (OPJ_OFF_T)got;
	}
	if (done == 0 && n > 0) {
		return (OPJ_OFF_T)-1;
	}
	return done;
}

static void jp2k_stream_free(void *slot) {
	goOpenJPEGRelease(slot);
	free(slot);
}

static opj_stream_t *jp2k_memory_stream(void *slot, OPJ_UINT64 length) {
	opj_stream_t *s = opj_stream_create(OPJ_J2K_STREAM_CHUNK_SIZE, OPJ_TRUE);
	if (!s) {
		return NULL;
	}
	opj_stream_set_user_data(s, slot, jp2k_stream_free);
	opj_stream_set_user_data_length(s, length);
	opj_stream_set_read_function(s, jp2k_stream_read);
	opj_stream_set_skip_function(s, jp2k_stream_skip);
	return s;
}

static void jp2k_info(const char *msg, void *slot) { goOpenJPEGMessage(slot, 0, (char *)msg); }
static void jp2k_warning(const char *msg, void *slot) { goOpenJPEGMessage(slot, 1, (char *)msg); }
static void jp2k_error(const char *msg, void *slot) { goOpenJPEGMessage(slot, 2, (char *)msg); }

static void jp2k_install_handlers(opj_codec_t *codec, void *slot) {
	opj_set_info_handler(codec, jp2k_info, slot);
	opj_set_warning_handler(codec, jp2k_warning, slot);
	opj_set_error_handler(codec, jp2k_error, slot);
}
*/
import "C"

import (
	"runtime/cgo"
	"strings"
	"unsafe"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// Available reports whether the native engine was compiled in.
const Available = true

// Engine drives libopenjp2. It is stateless; all state lives in the handles.
type Engine struct{}

// New returns the native engine.
func New() (engine.Engine, error) {
	return &Engine{}, nil
}

func (e *Engine) Name() string { return Name }

// decoder owns an opj_codec_t and the C slot its message handlers receive.
type decoder struct {
	codec  *C.opj_codec_t
	slot   unsafe.Pointer
	handle cgo.Handle
	report engine.ReportFunc
}

type stream struct {
	s *C.opj_stream_t
}

// memory is reached from C only through the stream's user data slot.
type memory struct {
	read    engine.ReadFunc
	release engine.ReleaseFunc
}

type img struct {
	p       *C.opj_image_t
	decoded bool
	comps   []engine.Component
}

// newSlot stores a handle to v in C memory so C callbacks can carry it.
func newSlot(v any) (unsafe.Pointer, cgo.Handle) {
	h := cgo.NewHandle(v)
	slot := C.malloc(C.size_t(unsafe.Sizeof(h)))
	if slot == nil {
		h.Delete()
		return nil, 0
	}
	*(*cgo.Handle)(slot) = h
	return slot, h
}

//export goOpenJPEGRead
func goOpenJPEGRead(slot unsafe.Pointer, buf unsafe.Pointer, n C.size_t) C.size_t {
	if slot == nil || buf == nil || n == 0 {
		return 0
	}
	m, ok := (*(*cgo.Handle)(slot)).Value().(*memory)
	if !ok || m.read == nil {
		return 0
	}
	return C.size_t(m.read(unsafe.Slice((*byte)(buf), int(n))))
}

//export goOpenJPEGRelease
func goOpenJPEGRelease(slot unsafe.Pointer) {
	if slot == nil {
		return
	}
	h := *(*cgo.Handle)(slot)
	m, _ := h.Value().(*memory)
	h.Delete()
	if m != nil && m.release != nil {
		m.release()
	}
}

//export goOpenJPEGMessage
func goOpenJPEGMessage(slot unsafe.Pointer, severity C.int, msg *C.char) {
	if slot == nil || msg == nil {
		return
	}
	dec, ok := (*(*cgo.Handle)(slot)).Value().(*decoder)
	if !ok || dec.report == nil {
		return
	}
	dec.report(engine.Severity(severity), strings.TrimSpace(C.GoString(msg)))
}

// CreateDecoder returns nil for codecs libopenjp2 cannot decompress (JPP, JPX).
func (e *Engine) CreateDecoder(codec engine.Codec) engine.Decoder {
	c := C.opj_create_decompress(C.OPJ_CODEC_FORMAT(codec))
	if c == nil {
		return nil
	}
	dec := &decoder{codec: c}
	dec.slot, dec.handle = newSlot(dec)
	if dec.slot == nil {
		C.opj_destroy_codec(c)
		return nil
	}
	C.jp2k_install_handlers(c, dec.slot)
	return dec
}

func (e *Engine) SetReporter(d engine.Decoder, fn engine.ReportFunc) {
	if dec, ok := d.(*decoder); ok {
		dec.report = fn
	}
}

func (e *Engine) SetupDecoder(d engine.Decoder, p engine.Params) bool {
	dec, ok := d.(*decoder)
	if !ok || dec.codec == nil {
		return false
	}
	var params C.opj_dparameters_t
	C.opj_set_default_decoder_parameters(&params)
	params.cp_reduce = C.OPJ_UINT32(p.Reduce)
	params.cp_layer = C.OPJ_UINT32(p.Layers)
	if p.Dump {
		params.flags |= C.OPJ_DPARAMETERS_DUMP_FLAG
	}
	return C.opj_setup_decoder(dec.codec, &params) != 0
}

func (e *Engine) SetThreadCount(d engine.Decoder, n int) bool {
	dec, ok := d.(*decoder)
	if !ok || dec.codec == nil {
		return false
	}
	return C.opj_codec_set_threads(dec.codec, C.int(n)) != 0
}

// CreateMemoryStream wraps read and release in a stream of the declared length.
// When creation fails release is not called.
func (e *Engine) CreateMemoryStream(length uint64, read engine.ReadFunc, release engine.ReleaseFunc) engine.Stream {
	if read == nil {
		return nil
	}
	slot, h := newSlot(&memory{read: read, release: release})
	if slot == nil {
		return nil
	}
	s := C.jp2k_memory_stream(slot, C.OPJ_UINT64(length))
	if s == nil {
		h.Delete()
		C.free(slot)
		return nil
	}
	return &stream{s: s}
}

func (e *Engine) CreateFileStream(path string) engine.Stream {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	s := C.opj_stream_create_default_file_stream(cpath, C.OPJ_TRUE)
	if s == nil {
		return nil
	}
	return &stream{s: s}
}

// ReadHeader may return an image alongside a failure; the caller destroys it.
func (e *Engine) ReadHeader(s engine.Stream, d engine.Decoder) (engine.Image, bool) {
	st, ok := s.(*stream)
	dec, ok2 := d.(*decoder)
	if !ok || !ok2 || st.s == nil || dec.codec == nil {
		return nil, false
	}
	var p *C.opj_image_t
	res := C.opj_read_header(st.s, dec.codec, &p)
	if p == nil {
		return nil, false
	}
	return &img{p: p}, res != 0
}

func (e *Engine) SetDecodeArea(d engine.Decoder, im engine.Image, x0, y0, x1, y1 int32) bool {
	dec, ok := d.(*decoder)
	out, ok2 := im.(*img)
	if !ok || !ok2 || dec.codec == nil || out.p == nil {
		return false
	}
	return C.opj_set_decode_area(dec.codec, out.p, C.OPJ_INT32(x0), C.OPJ_INT32(y0), C.OPJ_INT32(x1), C.OPJ_INT32(y1)) != 0
}

func (e *Engine) Decode(d engine.Decoder, s engine.Stream, im engine.Image) bool {
	dec, ok := d.(*decoder)
	st, ok2 := s.(*stream)
	out, ok3 := im.(*img)
	if !ok || !ok2 || !ok3 || dec.codec == nil || st.s == nil || out.p == nil {
		return false
	}
	if C.opj_decode(dec.codec, st.s, out.p) == 0 {
		return false
	}
	if C.opj_end_decompress(dec.codec, st.s) == 0 {
		return false
	}
	out.decoded = true
	out.comps = nil
	return true
}

func (e *Engine) DestroyStream(s engine.Stream) {
	if st, ok := s.(*stream); ok && st.s != nil {
		C.opj_stream_destroy(st.s)
		st.s = nil
	}
}

func (e *Engine) DestroyDecoder(d engine.Decoder) {
	dec, ok := d.(*decoder)
	if !ok || dec.codec == nil {
		return
	}
	C.opj_destroy_codec(dec.codec)
	dec.codec = nil
	dec.report = nil
	dec.handle.Delete()
	C.free(dec.slot)
	dec.slot = nil
}

func (e *Engine) DestroyImage(im engine.Image) {
	if out, ok := im.(*img); ok && out.p != nil {
		C.opj_image_destroy(out.p)
		out.p = nil
		out.comps = nil
	}
}

func (i *img) Bounds() engine.Rect {
	if i.p == nil {
		return engine.Rect{}
	}
	return engine.Rect{X0: uint32(i.p.x0), Y0: uint32(i.p.y0), X1: uint32(i.p.x1), Y1: uint32(i.p.y1)}
}

func (i *img) ColorSpace() int32 {
	if i.p == nil {
		return engine.ColorSpaceUnknown
	}
	return int32(i.p.color_space)
}

// Components copies the planes out of C memory once decode has filled them.
func (i *img) Components() []engine.Component {
	if i.p == nil {
		return nil
	}
	if i.comps != nil {
		return i.comps
	}
	src := unsafe.Slice(i.p.comps, int(i.p.numcomps))
	comps := make([]engine.Component, len(src))
	for k, c := range src {
		comps[k] = engine.Component{
			W:      uint32(c.w),
			H:      uint32(c.h),
			Factor: uint32(c.factor),
			Prec:   uint32(c.prec),
			Signed: c.sgnd != 0,
		}
		if i.decoded && c.data != nil {
			n := int(c.w) * int(c.h)
			comps[k].Data = append([]int32(nil), unsafe.Slice((*int32)(unsafe.Pointer(c.data)), n)...)
		}
	}
	if i.decoded {
		i.comps = comps
	}
	return comps
}
