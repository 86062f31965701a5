//go:build gozstd

package coder

import (
	"bytes"
	"io"

	"github.com/valyala/gozstd"
)

// gozstd's Compress/Decompress are whole-buffer, so this backend buffers
// a block's content rather than streaming it — acceptable for the cgo
// opt-in path, which trades the pure-Go backend's streaming behavior for
// libzstd's throughput.
func init() {
	Register(IDZstd, "Zstd", newZstdEncoder, newZstdDecoder, false)
}

type zstdEncoder struct {
	sink io.Writer
	buf  bytes.Buffer
}

func newZstdEncoder(_ []byte, sink io.Writer) (Encoder, error) {
	return &zstdEncoder{sink: sink}, nil
}

func (e *zstdEncoder) Write(p []byte) (int, error) { return e.buf.Write(p) }

func (e *zstdEncoder) Close() error {
	_, err := e.sink.Write(gozstd.Compress(nil, e.buf.Bytes()))

	return err
}

type zstdDecoder struct {
	r *bytes.Reader
}

func newZstdDecoder(_ []byte, source io.Reader, packSize, unpackSize int64) (Decoder, error) {
	packed := make([]byte, packSize)
	if _, err := io.ReadFull(source, packed); err != nil {
		return nil, err
	}

	out, err := gozstd.Decompress(make([]byte, 0, unpackSize), packed)
	if err != nil {
		return nil, err
	}

	return &zstdDecoder{r: bytes.NewReader(out)}, nil
}

func (d *zstdDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *zstdDecoder) Close() error                 { return nil }
