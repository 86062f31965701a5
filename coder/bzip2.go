package coder

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// BZip2 (method ID 04 02 02) has no options blob — block size is a stream
// header field bzip2 encodes itself. Backed by github.com/dsnet/compress/bzip2,
// retrieved alongside the rest of the dsnet/compress codecs used here.
func init() {
	Register(IDBZip2, "BZip2", newBZip2Encoder, newBZip2Decoder, false)
}

type bzip2Encoder struct {
	w *bzip2.Writer
}

func newBZip2Encoder(_ []byte, sink io.Writer) (Encoder, error) {
	return &bzip2Encoder{w: bzip2.NewWriter(sink)}, nil
}

func (e *bzip2Encoder) Write(p []byte) (int, error) { return e.w.Write(p) }
func (e *bzip2Encoder) Close() error                 { return e.w.Close() }

type bzip2Decoder struct {
	r *bzip2.Reader
	l io.Reader
}

func newBZip2Decoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	r, err := bzip2.NewReader(source, nil)
	if err != nil {
		return nil, err
	}

	return &bzip2Decoder{r: r, l: io.LimitReader(r, unpackSize)}, nil
}

func (d *bzip2Decoder) Read(p []byte) (int, error) { return d.l.Read(p) }
func (d *bzip2Decoder) Close() error                 { return d.r.Close() }
