// Package jp2k decodes JPEG 2000 images by driving a handle-based decoding engine
// (see package engine) and packing its component planes into byte buffers.
//
// The package owns everything around the engine: turning byte slices and files into
// engine streams, creating and destroying decoder, stream and image handles in a
// fixed order on every exit path, resolving decode parameters and output geometry,
// resolving the delivery color space, and interleaving planes.
//
//	dec := jp2k.New(gojp2.New(), jp2k.CodecJP2, jp2k.DecodeParams{}.WithReduceFactor(1))
//	buf, err := dec.Buffer(ctx, jp2k.Bytes(data))
package jp2k

import (
	"bytes"
	"strings"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// Codec selects the codestream family handed to the engine.
type Codec = engine.Codec

const (
	CodecJ2K = engine.CodecJ2K
	CodecJPT = engine.CodecJPT
	CodecJP2 = engine.CodecJP2
	CodecJPP = engine.CodecJPP
	CodecJPX = engine.CodecJPX
)

var (
	jp2Signature = []byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' ', 0x0D, 0x0A, 0x87, 0x0A}
	j2kSignature = []byte{0xFF, 0x4F, 0xFF, 0x51}
)

// DetectCodec identifies the codec family from the leading bytes of a file.
// JP2 and JPX share a signature box; JP2 is reported.
func DetectCodec(head []byte) (Codec, bool) {
	switch {
	case bytes.HasPrefix(head, jp2Signature):
		return CodecJP2, true
	case bytes.HasPrefix(head, j2kSignature):
		return CodecJ2K, true
	}
	return engine.CodecUnknown, false
}

// ParseCodec maps a codec name (j2k, j2c, jpc, jp2, jpx, jpf, jpt, jpp) to a Codec.
func ParseCodec(name string) (Codec, bool) {
	switch strings.ToLower(name) {
	case "j2k", "j2c", "jpc":
		return CodecJ2K, true
	case "jp2":
		return CodecJP2, true
	case "jpx", "jpf":
		return CodecJPX, true
	case "jpt":
		return CodecJPT, true
	case "jpp":
		return CodecJPP, true
	}
	return engine.CodecUnknown, false
}
