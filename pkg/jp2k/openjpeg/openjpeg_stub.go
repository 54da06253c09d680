//go:build !(openjpeg && cgo)

package openjpeg

import "github.com/jpfielding/jp2k.go/pkg/jp2k/engine"

// Available reports whether the native engine was compiled in.
const Available = false

// New always fails with ErrUnavailable in this build.
func New() (engine.Engine, error) {
	return nil, ErrUnavailable
}
