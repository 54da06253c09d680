package jp2k

import (
	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// fakeEngine records every call and can be told to fail one step.
type fakeEngine struct {
	failAt   string
	message  string // reported as an engine error before failing
	header   fakeImage
	calls    []string
	read     int // bytes pulled through memory stream callbacks
	released int
	params   engine.Params
	threads  int
	destroys map[string]int
	reporter engine.ReportFunc
}

type fakeDecoder struct{ id int }

type fakeStream struct {
	read    engine.ReadFunc
	release engine.ReleaseFunc
}

type fakeImage struct {
	bounds engine.Rect
	cs     int32
	comps  []engine.Component
}

func (i *fakeImage) Bounds() engine.Rect            { return i.bounds }
func (i *fakeImage) ColorSpace() int32              { return i.cs }
func (i *fakeImage) Components() []engine.Component { return i.comps }

func newFakeEngine(header fakeImage) *fakeEngine {
	return &fakeEngine{header: header, destroys: map[string]int{}}
}

func (f *fakeEngine) step(name string) bool {
	f.calls = append(f.calls, name)
	if f.failAt == name {
		if f.message != "" && f.reporter != nil {
			f.reporter(engine.SeverityError, f.message)
		}
		return false
	}
	return true
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) SetReporter(_ engine.Decoder, fn engine.ReportFunc) { f.reporter = fn }

func (f *fakeEngine) CreateDecoder(engine.Codec) engine.Decoder {
	if !f.step("create_decompress") {
		return nil
	}
	return &fakeDecoder{id: 1}
}

func (f *fakeEngine) SetupDecoder(_ engine.Decoder, p engine.Params) bool {
	f.params = p
	return f.step("setup_decoder")
}

func (f *fakeEngine) SetThreadCount(_ engine.Decoder, n int) bool {
	f.threads = n
	return f.step("set_threads")
}

func (f *fakeEngine) CreateMemoryStream(_ uint64, read engine.ReadFunc, release engine.ReleaseFunc) engine.Stream {
	if !f.step("create_stream") {
		return nil
	}
	return &fakeStream{read: read, release: release}
}

func (f *fakeEngine) CreateFileStream(string) engine.Stream {
	if !f.step("create_stream") {
		return nil
	}
	return &fakeStream{}
}

func (f *fakeEngine) ReadHeader(s engine.Stream, _ engine.Decoder) (engine.Image, bool) {
	if st := s.(*fakeStream); st.read != nil {
		buf := make([]byte, 3)
		for n := st.read(buf); n > 0; n = st.read(buf) {
			f.read += n
		}
	}
	if !f.step("read_header") {
		return nil, false
	}
	img := f.header
	img.comps = append([]engine.Component(nil), f.header.comps...)
	return &img, true
}

func (f *fakeEngine) SetDecodeArea(engine.Decoder, engine.Image, int32, int32, int32, int32) bool {
	return f.step("set_decode_area")
}

func (f *fakeEngine) Decode(engine.Decoder, engine.Stream, engine.Image) bool {
	return f.step("decode")
}

func (f *fakeEngine) DestroyStream(s engine.Stream) {
	f.calls = append(f.calls, "destroy_stream")
	f.destroys["stream"]++
	if st := s.(*fakeStream); st.release != nil {
		st.release()
		f.released++
	}
}

func (f *fakeEngine) DestroyDecoder(engine.Decoder) {
	f.calls = append(f.calls, "destroy_decoder")
	f.destroys["decoder"]++
	f.reporter = nil
}

func (f *fakeEngine) DestroyImage(engine.Image) {
	f.calls = append(f.calls, "destroy_image")
	f.destroys["image"]++
}

// destroyOrder returns the destroy calls in the order they were made.
func (f *fakeEngine) destroyOrder() []string {
	var out []string
	for _, c := range f.calls {
		switch c {
		case "destroy_stream", "destroy_decoder", "destroy_image":
			out = append(out, c)
		}
	}
	return out
}

// rgbHeader is a 2x2, three component sRGB image with constant planes 10, 20, 30.
func rgbHeader() fakeImage {
	plane := func(v int32) []int32 { return []int32{v, v, v, v} }
	return fakeImage{
		bounds: engine.Rect{X1: 2, Y1: 2},
		cs:     engine.ColorSpaceSRGB,
		comps: []engine.Component{
			{W: 2, H: 2, Prec: 8, Data: plane(10)},
			{W: 2, H: 2, Prec: 8, Data: plane(20)},
			{W: 2, H: 2, Prec: 8, Data: plane(30)},
		},
	}
}
