package coder

import (
	"bytes"
	"io"
)

// BCJ x86 rewrites the operands of CALL (0xE8) and JMP (0xE9) near
// instructions between relative and absolute addressing so the following
// codec sees more repetition in position-independent executable code. No
// package in the pack exports this filter standalone (ulikunitz/xz applies
// it only internally to its own .xz container), so this is a direct port of
// the public-domain LZMA SDK x86 BCJ algorithm (Bra86.c), operating on the
// whole buffer the way the reference implementation does.
func init() {
	Register(IDBCJX86, "BCJ_X86", newBCJEncoder, newBCJDecoder, false)
}

const bcjIP = 0

func isJ(b byte) bool { return b == 0x00 || b == 0xFF }

// bcjX86Convert applies (or reverses, if !encoding) the x86 BCJ transform
// to data in place.
func bcjX86Convert(data []byte, encoding bool) {
	if len(data) < 5 {
		return
	}

	size := len(data) - 4
	pos := 0
	prevMask := uint32(0)
	ip := uint32(bcjIP) + 5

	for pos < size {
		if data[pos]&0xFE != 0xE8 {
			pos++

			continue
		}

		off := pos
		pos++

		if prevMask != 0 {
			idx := (prevMask >> 1)
			if idx > 3 {
				idx = 3
			}

			if !isJ(data[off+4-int(idx)]) {
				prevMask = (prevMask >> 1) | 4

				continue
			}
		}

		if !isJ(data[off+4]) {
			prevMask = 0

			continue
		}

		src := uint32(data[off+1]) | uint32(data[off+2])<<8 | uint32(data[off+3])<<16 | uint32(data[off+4])<<24

		var dest uint32
		for {
			if encoding {
				dest = src + (ip + uint32(off))
			} else {
				dest = src - (ip + uint32(off))
			}

			if prevMask == 0 {
				break
			}

			idx := (prevMask >> 1)
			if idx > 3 {
				idx = 3
			}

			b := byte(dest >> (24 - idx*8))
			if !isJ(b) {
				break
			}

			src = dest ^ ((1 << (32 - idx*8)) - 1)
		}

		data[off+4] = byte(0 - ((dest >> 24) & 1))
		data[off+3] = byte(dest >> 16)
		data[off+2] = byte(dest >> 8)
		data[off+1] = byte(dest)
		pos = off + 5
		prevMask = 0
	}
}

type bcjEncoder struct {
	sink io.Writer
	buf  bytes.Buffer
}

func newBCJEncoder(_ []byte, sink io.Writer) (Encoder, error) {
	return &bcjEncoder{sink: sink}, nil
}

func (e *bcjEncoder) Write(p []byte) (int, error) { return e.buf.Write(p) }

func (e *bcjEncoder) Close() error {
	data := e.buf.Bytes()
	bcjX86Convert(data, true)
	_, err := e.sink.Write(data)

	return err
}

type bcjDecoder struct {
	r *bytes.Reader
}

func newBCJDecoder(_ []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	data := make([]byte, unpackSize)
	if _, err := io.ReadFull(source, data); err != nil {
		return nil, err
	}

	bcjX86Convert(data, false)

	return &bcjDecoder{r: bytes.NewReader(data)}, nil
}

func (d *bcjDecoder) Read(p []byte) (int, error) { return d.r.Read(p) }
func (d *bcjDecoder) Close() error                { return nil }
