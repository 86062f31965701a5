package coder

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 (7-zip custom method ID 04 04 04) is backed by
// github.com/pierrec/lz4/v4's streaming frame Reader/Writer. The package
// also exposes a block-level CompressBlock/UncompressBlock API for small,
// fully-buffered payloads, but the 7z pipeline needs a streaming push/pull
// coder, so this uses the frame-format Reader/Writer instead.
func init() {
	Register(IDLZ4, "LZ4", newLZ4Encoder, newLZ4Decoder, false)
}

type lz4Encoder struct {
	w *lz4.Writer
}

func newLZ4Encoder(_ []byte, sink io.Writer) (Encoder, error) {
	return &lz4Encoder{w: lz4.NewWriter(sink)}, nil
}

func (e *lz4Encoder) Write(p []byte) (int, error) { return e.w.Write(p) }
func (e *lz4Encoder) Close() error                 { return e.w.Close() }

type lz4Decoder struct {
	r io.Reader
}

func newLZ4Decoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	return &lz4Decoder{r: io.LimitReader(lz4.NewReader(source), unpackSize)}, nil
}

func (d *lz4Decoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *lz4Decoder) Close() error               { return nil }
