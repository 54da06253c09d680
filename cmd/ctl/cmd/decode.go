package cmd

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jpfielding/jp2k.go/pkg/jp2k"
)

// NewDecodeCmd decodes a JPEG 2000 image into png, tiff, bmp or raw bytes.
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "JPEG 2000 decode",
		Long:  "Decodes a JPEG 2000 codestream or JP2 file, optionally reduced, cropped or layer limited, and writes the pixels.",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri, _ := cmd.Flags().GetString("in")
			if uri == "" && len(args) > 0 {
				uri = args[0]
			}
			insecure, _ := cmd.Flags().GetBool("insecure")
			verbose, _ := cmd.Flags().GetBool("verbose")
			in, err := openInput(ctx, uri, insecure, verbose)
			if err != nil {
				return err
			}
			dec, err := decoderFromFlags(cmd, in)
			if err != nil {
				return err
			}
			params, err := paramsFromFlags(cmd)
			if err != nil {
				return err
			}
			dec.Params = params

			var img image.Image
			var raw []byte
			if rgba, _ := cmd.Flags().GetBool("rgba"); rgba {
				m, err := dec.Image(ctx, in.source())
				if err != nil {
					return err
				}
				img, raw = m, m.Pix
			} else {
				buf, err := dec.Buffer(ctx, in.source())
				if err != nil {
					return err
				}
				if img, err = buf.Image(); err != nil {
					return err
				}
				raw = buf.Buffer
			}
			b := img.Bounds()
			slog.InfoContext(ctx, "decoded", "in", in.uri, "width", b.Dx(), "height", b.Dy())

			out, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			return writeOutput(cmd.OutOrStdout(), out, format, img, raw)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("in", "i", "", "input path, file:// or http(s) URI, - for stdin")
	pf.StringP("out", "o", "-", "output path, - for stdout")
	pf.StringP("format", "f", "png", "output format (png|tiff|bmp|raw)")
	pf.String("engine", "go", "decoding engine (go|openjpeg)")
	pf.String("codec", "auto", "codec (auto|j2k|jp2|jpx|jpt|jpp)")
	pf.Uint32("reduce", 0, "resolution levels to discard")
	pf.Uint32("layers", 0, "quality layers to decode")
	pf.String("area", "", "decode window x0,y0,x1,y1 in full resolution coordinates")
	pf.Int("threads", 0, "engine worker threads")
	pf.String("default-colorspace", "", "color space used when the file does not declare one (srgb|gray|sycc|eycc|cmyk)")
	pf.Bool("rgba", false, "convert through the color space to RGBA")
	pf.Bool("insecure", false, "skip TLS verification for https inputs")
	pf.BoolP("verbose", "v", false, "dump http request and response headers")
	return cmd
}

func decoderFromFlags(cmd *cobra.Command, in *input) (*jp2k.Decoder, error) {
	engineName, _ := cmd.Flags().GetString("engine")
	eng, err := selectEngine(engineName)
	if err != nil {
		return nil, err
	}
	codecName, _ := cmd.Flags().GetString("codec")
	codec, err := selectCodec(codecName, in.head)
	if err != nil {
		return nil, err
	}
	return jp2k.New(eng, codec, jp2k.DecodeParams{}), nil
}

// paramsFromFlags sets only the options given on the command line.
func paramsFromFlags(cmd *cobra.Command) (jp2k.DecodeParams, error) {
	var p jp2k.DecodeParams
	f := cmd.Flags()
	if f.Changed("reduce") {
		v, _ := f.GetUint32("reduce")
		p = p.WithReduceFactor(v)
	}
	if f.Changed("layers") {
		v, _ := f.GetUint32("layers")
		p = p.WithQualityLayers(v)
	}
	if f.Changed("threads") {
		v, _ := f.GetInt("threads")
		p = p.WithNumThreads(v)
	}
	if s, _ := f.GetString("area"); s != "" {
		a, err := parseArea(s)
		if err != nil {
			return p, err
		}
		p = p.WithDecodingArea(a.X0, a.Y0, a.X1, a.Y1)
	}
	if s, _ := f.GetString("default-colorspace"); s != "" {
		cs, err := jp2k.ParseColorSpace(s)
		if err != nil {
			return p, err
		}
		p = p.WithDefaultColorSpace(cs)
	}
	return p, nil
}

func writeOutput(stdout io.Writer, path, format string, img image.Image, raw []byte) error {
	w := stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return encodeImage(w, format, img, raw)
}

func encodeImage(w io.Writer, format string, img image.Image, raw []byte) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "tiff", "tif":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "bmp":
		return bmp.Encode(w, img)
	case "raw":
		_, err := w.Write(raw)
		return err
	}
	return fmt.Errorf("unknown output format %q (png|tiff|bmp|raw)", format)
}
