package jp2k

import (
	"errors"
	"fmt"
)

// Failure kinds. Engine step failures arrive wrapped in *EngineError; use errors.Is.
var (
	ErrDecoderCreate         = errors.New("codec instantiation failed")
	ErrDecoderSetup          = errors.New("setting up the decoder failed")
	ErrThreads               = errors.New("could not set the decoder thread count")
	ErrReadHeader            = errors.New("reading the header failed")
	ErrDecodeArea            = errors.New("setting up the decoding area failed")
	ErrDecode                = errors.New("decoding the image failed")
	ErrStreamCreate          = errors.New("stream creation failed")
	ErrPathEncoding          = errors.New("path contains a NUL byte")
	ErrComponentCount        = errors.New("unsupported number of components")
	ErrColorSpaceUnspecified = errors.New("unspecified color space")
	ErrColorSpaceUnknown     = errors.New("unknown color space")
	ErrColorConversion       = errors.New("color conversion not implemented")
	ErrBufferSize            = errors.New("component plane smaller than output buffer")
)

// EngineError reports a failed engine call.
type EngineError struct {
	Step    string // engine call that failed, e.g. "read_header"
	Engine  string
	Message string // last error message the engine reported, if any
	Err     error
}

func (e *EngineError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Engine, e.Step, e.Err, e.Message)
	}
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Step, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
