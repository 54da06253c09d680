package jp2k

import (
	"fmt"
	"strings"

	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
)

// ColorSpace is a concrete delivery color space. Unknown and unspecified are
// resolution failures, not color spaces, so they have no value here.
type ColorSpace int

const (
	ColorSpaceCMYK ColorSpace = iota + 1
	ColorSpaceEYCC
	ColorSpaceGray
	ColorSpaceSRGB
	ColorSpaceSYCC
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceCMYK:
		return "CMYK"
	case ColorSpaceEYCC:
		return "EYCC"
	case ColorSpaceGray:
		return "GRAY"
	case ColorSpaceSRGB:
		return "SRGB"
	case ColorSpaceSYCC:
		return "SYCC"
	default:
		return fmt.Sprintf("ColorSpace(%d)", int(c))
	}
}

// ParseColorSpace maps a name such as "srgb" or "gray" to a ColorSpace.
func ParseColorSpace(name string) (ColorSpace, error) {
	switch strings.ToUpper(name) {
	case "CMYK":
		return ColorSpaceCMYK, nil
	case "EYCC":
		return ColorSpaceEYCC, nil
	case "GRAY", "GREY":
		return ColorSpaceGray, nil
	case "SRGB", "RGB":
		return ColorSpaceSRGB, nil
	case "SYCC":
		return ColorSpaceSYCC, nil
	}
	return 0, fmt.Errorf("unrecognized color space %q", name)
}

// ColorSpaceValue is the color space an engine reported: a concrete space,
// Unspecified, or Unknown with the original code.
type ColorSpaceValue struct {
	space       ColorSpace
	unspecified bool
	code        int32
}

// ColorSpaceFromCode decodes an engine color space code.
func ColorSpaceFromCode(code int32) ColorSpaceValue {
	v := ColorSpaceValue{code: code}
	switch code {
	case engine.ColorSpaceCMYK:
		v.space = ColorSpaceCMYK
	case engine.ColorSpaceEYCC:
		v.space = ColorSpaceEYCC
	case engine.ColorSpaceGray:
		v.space = ColorSpaceGray
	case engine.ColorSpaceSRGB:
		v.space = ColorSpaceSRGB
	case engine.ColorSpaceSYCC:
		v.space = ColorSpaceSYCC
	case engine.ColorSpaceUnspecified:
		v.unspecified = true
	}
	return v
}

// Determined returns the concrete color space, if the value carries one.
func (v ColorSpaceValue) Determined() (ColorSpace, bool) {
	return v.space, v.space != 0
}

func (v ColorSpaceValue) IsUnspecified() bool { return v.unspecified }

// IsUnknown reports an unrecognized code.
func (v ColorSpaceValue) IsUnknown() bool { return v.space == 0 && !v.unspecified }

// Code is the raw engine value.
func (v ColorSpaceValue) Code() int32 { return v.code }

func (v ColorSpaceValue) String() string {
	switch {
	case v.space != 0:
		return v.space.String()
	case v.unspecified:
		return "UNSPECIFIED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", v.code)
	}
}

// ResolveColorSpace picks the delivery color space: the reported one when it is
// concrete, else the fallback from params, else an error telling apart a file that
// omits the information from one that uses an unrecognized code.
func ResolveColorSpace(raw ColorSpaceValue, params DecodeParams) (ColorSpace, error) {
	if cs, ok := raw.Determined(); ok {
		return cs, nil
	}
	if cs, ok := params.DefaultColorSpace(); ok {
		return cs, nil
	}
	if raw.IsUnspecified() {
		return 0, ErrColorSpaceUnspecified
	}
	return 0, fmt.Errorf("%w: code %d", ErrColorSpaceUnknown, raw.Code())
}

// MaxComponents is the most components the RGBA path accepts per pixel.
const MaxComponents = 4

// ToRGBA maps one pixel's component values (unused slots already defaulted) to RGBA.
func (c ColorSpace) ToRGBA(src [MaxComponents]uint8) ([MaxComponents]uint8, error) {
	switch c {
	case ColorSpaceSRGB:
		return src, nil
	case ColorSpaceGray:
		return [MaxComponents]uint8{src[0], src[0], src[0], 255}, nil
	}
	return src, fmt.Errorf("%w: %s to RGBA", ErrColorConversion, c)
}
