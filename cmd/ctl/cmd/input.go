package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"strconv"
	"strings"

	"github.com/jpfielding/jp2k.go/pkg/jp2k"
	"github.com/jpfielding/jp2k.go/pkg/jp2k/engine"
	"github.com/jpfielding/jp2k.go/pkg/jp2k/gojp2"
	"github.com/jpfielding/jp2k.go/pkg/jp2k/openjpeg"
)

// input is a resolved --in argument. Local files keep data nil and are read by the
// engine; stdin and http sources are buffered.
type input struct {
	uri  string
	path string
	data []byte
	head []byte
}

func (in *input) source() jp2k.Source {
	if in.data != nil {
		return jp2k.Bytes(in.data)
	}
	return jp2k.File(in.path)
}

// bytes returns the whole input, reading local files on demand.
func (in *input) bytes() ([]byte, error) {
	if in.data != nil {
		return in.data, nil
	}
	return os.ReadFile(in.path)
}

// openInput accepts a path, file:// URI, "-" for stdin, or an http(s) URL.
func openInput(ctx context.Context, uri string, insecure, verbose bool) (*input, error) {
	if uri == "" {
		return nil, fmt.Errorf("an input is required, use --in")
	}
	in := &input{uri: uri}
	path := strings.TrimPrefix(uri, "file://")
	switch {
	case path == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		in.data = data
	case strings.HasPrefix(path, "http"):
		cl := &http.Client{}
		if insecure {
			cl.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := cl.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download: %w", err)
		}
		defer resp.Body.Close()
		if verbose {
			reqDump, _ := httputil.DumpRequest(req, true)
			os.Stderr.Write(reqDump)
			resDump, _ := httputil.DumpResponse(resp, false)
			os.Stderr.Write(resDump)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to download: %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to download: %w", err)
		}
		in.data = data
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		head := make([]byte, 16)
		n, _ := io.ReadFull(f, head)
		in.path = path
		in.head = head[:n]
		return in, nil
	}
	in.head = in.data[:min(len(in.data), 16)]
	slog.DebugContext(ctx, "input buffered", "uri", uri, "bytes", len(in.data))
	return in, nil
}

// selectEngine maps --engine to an engine implementation.
func selectEngine(name string) (engine.Engine, error) {
	switch strings.ToLower(name) {
	case "", "go", "gojp2":
		return gojp2.New(), nil
	case "openjpeg", "opj":
		return openjpeg.New()
	}
	return nil, fmt.Errorf("unknown engine %q (go|openjpeg)", name)
}

// selectCodec maps --codec to a codec, sniffing the input for "auto".
func selectCodec(name string, head []byte) (jp2k.Codec, error) {
	if name == "" || strings.EqualFold(name, "auto") {
		c, ok := jp2k.DetectCodec(head)
		if !ok {
			return c, fmt.Errorf("no JPEG 2000 signature found, set --codec")
		}
		return c, nil
	}
	c, ok := jp2k.ParseCodec(name)
	if !ok {
		return c, fmt.Errorf("unknown codec %q (auto|j2k|jp2|jpx|jpt|jpp)", name)
	}
	return c, nil
}

// parseArea reads "x0,y0,x1,y1".
func parseArea(s string) (jp2k.Area, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return jp2k.Area{}, fmt.Errorf("area %q must be x0,y0,x1,y1", s)
	}
	var v [4]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return jp2k.Area{}, fmt.Errorf("area %q: %w", s, err)
		}
		v[i] = int32(n)
	}
	return jp2k.Area{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil
}
