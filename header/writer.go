package header

import (
	"bytes"
	"encoding/binary"

	"github.com/go7z/sevenz/internal/varint"
)

// cursorWriter accumulates an in-memory header blob. Like cursor, headers
// are always built up as a whole buffer and only written out (optionally
// through a compressing coder, for an encoded header) once complete.
type cursorWriter struct {
	buf bytes.Buffer
}

func (w *cursorWriter) id(v byte) {
	w.buf.WriteByte(v)
}

func (w *cursorWriter) byteVal(v byte) {
	w.buf.WriteByte(v)
}

func (w *cursorWriter) boolByte(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *cursorWriter) write(p []byte) {
	w.buf.Write(p)
}

func (w *cursorWriter) u64(v uint64) {
	w.buf.Write(varint.Append(nil, v))
}

func (w *cursorWriter) u32le(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *cursorWriter) u64le(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *cursorWriter) bytes() []byte {
	return w.buf.Bytes()
}
