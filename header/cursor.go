package header

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/internal/varint"
)

// cursor is a forward-only reader over an in-memory header blob, tracking
// its offset so parse errors can report where the grammar broke down.
// Headers are always decoded as whole buffers (never streamed), since the
// encoded-header case must be fully decompressed before it can be parsed
// anyway.
type cursor struct {
	r      *bytes.Reader
	base   int64
	origin int64
}

func newCursor(data []byte, origin int64) *cursor {
	return &cursor{r: bytes.NewReader(data), base: int64(len(data)), origin: origin}
}

func (c *cursor) offset() int64 {
	return c.origin + (c.base - int64(c.r.Len()))
}

func (c *cursor) fail(reason string) error {
	return errs.NewMalformedHeader(c.offset(), reason)
}

func (c *cursor) byte() (byte, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, c.fail("unexpected end of header")
	}

	return b, nil
}

func (c *cursor) id() (byte, error) {
	return c.byte()
}

func (c *cursor) bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, c.fail("unexpected end of header")
	}

	return buf, nil
}

func (c *cursor) u64() (uint64, error) {
	v, err := varint.Read(c.r)
	if err != nil {
		return 0, c.fail("malformed varint")
	}

	return v, nil
}

func (c *cursor) u32le() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64le() (uint64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b), nil
}

// boolByte reads one byte and requires it to be 0 or 1, per the grammar's
// BoolVector-as-bytes encoding used for e.g. per-file "defined" vectors
// in some sections.
func (c *cursor) boolByte() (bool, error) {
	b, err := c.byte()
	if err != nil {
		return false, err
	}

	if b > 1 {
		return false, c.fail("boolean byte out of range")
	}

	return b != 0, nil
}

func (c *cursor) remaining() int {
	return c.r.Len()
}
