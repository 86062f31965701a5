//go:build !gozstd

package coder

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func init() {
	Register(IDZstd, "Zstd", newZstdEncoder, newZstdDecoder, false)
}

type zstdEncoder struct {
	w *zstd.Encoder
}

func newZstdEncoder(_ []byte, sink io.Writer) (Encoder, error) {
	w, err := zstd.NewWriter(sink)
	if err != nil {
		return nil, err
	}

	return &zstdEncoder{w: w}, nil
}

func (e *zstdEncoder) Write(p []byte) (int, error) { return e.w.Write(p) }
func (e *zstdEncoder) Close() error                 { return e.w.Close() }

type zstdDecoder struct {
	d *zstd.Decoder
	r io.Reader
}

func newZstdDecoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	d, err := zstd.NewReader(source)
	if err != nil {
		return nil, err
	}

	return &zstdDecoder{d: d, r: io.LimitReader(d, unpackSize)}, nil
}

func (d *zstdDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }

func (d *zstdDecoder) Close() error {
	d.d.Close()

	return nil
}
