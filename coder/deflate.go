package coder

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// Deflate (method ID 04 01 08) is raw DEFLATE with no zlib/gzip framing.
// Backed by github.com/klauspost/compress/flate, already a dependency for
// its Zstd support, rather than stdlib compress/flate — klauspost's
// implementation is a drop-in faster reimplementation and the pack already
// pulls it in, so preferring it over an additional stdlib-only path keeps
// one fewer distinct codec surface to reason about.
func init() {
	Register(IDDeflate, "Deflate", newDeflateEncoder, newDeflateDecoder, false)
}

type deflateEncoder struct {
	w *flate.Writer
}

func newDeflateEncoder(_ []byte, sink io.Writer) (Encoder, error) {
	w, err := flate.NewWriter(sink, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}

	return &deflateEncoder{w: w}, nil
}

func (e *deflateEncoder) Write(p []byte) (int, error) { return e.w.Write(p) }
func (e *deflateEncoder) Close() error                 { return e.w.Close() }

type deflateDecoder struct {
	rc io.ReadCloser
	r  io.Reader
}

func newDeflateDecoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	rc := flate.NewReader(source)

	return &deflateDecoder{rc: rc, r: io.LimitReader(rc, unpackSize)}, nil
}

func (d *deflateDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *deflateDecoder) Close() error                { return d.rc.Close() }
