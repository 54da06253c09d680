package jp2k

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// Source is something an engine stream can be opened on.
type Source interface {
	Open(e engine.Engine) (*Stream, error)
	String() string
}

// Bytes is an in-memory source. The slice is read in place and must not be
// modified while a decode is running.
func Bytes(b []byte) Source { return memorySource(b) }

// File is a source read by the engine directly from path.
func File(path string) Source { return fileSource(path) }

type memorySource []byte

func (m memorySource) Open(e engine.Engine) (*Stream, error) { return OpenMemory(e, m) }
func (m memorySource) String() string                        { return fmt.Sprintf("memory(%d bytes)", len(m)) }

type fileSource string

func (f fileSource) Open(e engine.Engine) (*Stream, error) { return OpenFile(e, string(f)) }
func (f fileSource) String() string                        { return string(f) }

// Stream is an engine stream handle bound to one source.
type Stream struct {
	eng    engine.Engine
	handle engine.Stream
}

// OpenMemory creates an engine stream that pulls from b. The read cursor lives only
// inside the callbacks handed to the engine, which releases it when the stream is
// destroyed.
func OpenMemory(e engine.Engine, b []byte) (*Stream, error) {
	cur := &cursor{buf: b}
	h := e.CreateMemoryStream(uint64(len(b)), cur.read, cur.release)
	if h == nil {
		return nil, fmt.Errorf("%w: %s memory stream", ErrStreamCreate, e.Name())
	}
	return &Stream{eng: e, handle: h}, nil
}

// OpenFile creates an engine stream reading path.
func OpenFile(e engine.Engine, path string) (*Stream, error) {
	if strings.IndexByte(path, 0) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrPathEncoding, path)
	}
	h := e.CreateFileStream(path)
	if h == nil {
		return nil, fmt.Errorf("%w: %s file stream %s", ErrStreamCreate, e.Name(), path)
	}
	return &Stream{eng: e, handle: h}, nil
}

// Handle is the engine handle, nil once closed.
func (s *Stream) Handle() engine.Stream { return s.handle }

// Close destroys the engine stream. Later calls do nothing.
func (s *Stream) Close() {
	if s.handle == nil {
		return
	}
	s.eng.DestroyStream(s.handle)
	s.handle = nil
}

// cursor is the read state behind a memory stream.
type cursor struct {
	buf      []byte
	off      int
	released bool
}

// read copies min(len(p), remaining) bytes and advances the cursor. It returns 0 at
// the end of the source, for an empty destination and after release.
func (c *cursor) read(p []byte) int {
	if c.released || len(p) == 0 || c.off >= len(c.buf) {
		return 0
	}
	n := copy(p, c.buf[c.off:])
	c.off += n
	return n
}

func (c *cursor) release() {
	if c.released {
		slog.Warn("jp2k stream cursor released twice")
		return
	}
	c.released = true
	c.buf = nil
}
