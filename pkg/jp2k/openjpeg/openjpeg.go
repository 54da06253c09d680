// Package openjpeg implements the jp2k engine contract on libopenjp2.
//
// The native engine is compiled only with cgo and the openjpeg build tag:
//
//	go build -tags openjpeg ./...
//
// It locates libopenjp2 through pkg-config. Without the tag New reports
// ErrUnavailable, so callers can fall back to the pure-Go engine.
package openjpeg

import "errors"

// Name identifies the engine in logs and errors.
const Name = "openjpeg"

// ErrUnavailable is returned by New when the binary was built without libopenjp2.
var ErrUnavailable = errors.New("openjpeg engine not compiled in; rebuild with -tags openjpeg and cgo enabled")
