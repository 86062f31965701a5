package coder

import (
	"io"

	"github.com/dsnet/compress/brotli"
)

// Brotli (7-zip custom method ID 04 04 02) decode is backed by
// github.com/dsnet/compress/brotli, which — like the upstream brotli C
// library wrapped by most language bindings — is a decoder only; it never
// shipped a Go encoder. Only the decode side works here, a direct
// reflection of what the backing package actually offers: archives written
// elsewhere with Brotli decode through this engine, but the encode factory
// always fails with errs.UnsupportedCodecError, so this engine cannot itself
// author new Brotli-compressed blocks.
func init() {
	Register(IDBrotli, "Brotli", newBrotliEncoder, newBrotliDecoder, false)
}

func newBrotliEncoder(_ []byte, _ io.Writer) (Encoder, error) {
	return nil, newUnsupported(IDBrotli)
}

type brotliDecoder struct {
	r io.Reader
}

func newBrotliDecoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	r := brotli.NewReader(source)

	return &brotliDecoder{r: io.LimitReader(r, unpackSize)}, nil
}

func (d *brotliDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *brotliDecoder) Close() error                 { return nil }
