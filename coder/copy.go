package coder

import "io"

func init() {
	Register(IDCopy, "Copy", newCopyEncoder, newCopyDecoder, false)
}

// copyEncoder is the identity coder: bytes pass through unchanged.
type copyEncoder struct {
	sink io.Writer
}

func newCopyEncoder(_ []byte, sink io.Writer) (Encoder, error) {
	return &copyEncoder{sink: sink}, nil
}

func (c *copyEncoder) Write(p []byte) (int, error) { return c.sink.Write(p) }
func (c *copyEncoder) Close() error                { return nil }

type copyDecoder struct {
	io.Reader
}

func newCopyDecoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	return &copyDecoder{Reader: io.LimitReader(source, unpackSize)}, nil
}

func (c *copyDecoder) Close() error { return nil }
