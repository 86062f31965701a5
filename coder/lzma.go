package coder

import (
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/go7z/sevenz/errs"
)

// LZMA (method ID 03 01 01) is the classic 7z codec: a 5-byte properties
// blob (1 byte packing lc/lp/pb, 4 bytes little-endian dictionary size)
// precedes a raw LZMA1 stream with no embedded size — the folder metadata
// already carries the uncompressed size. Backed by
// github.com/ulikunitz/xz/lzma's raw (header-less) reader/writer, the same
// package dsnet/compress and the retrieved ulikunitz/xz source both build
// on for LZMA1/LZMA2.
func init() {
	Register(IDLZMA, "LZMA", newLZMAEncoder, newLZMADecoder, false)
}

func lzmaProperties(options []byte) (lzma.Parameters, error) {
	var p lzma.Parameters
	if len(options) < 5 {
		return p, errs.NewMalformedHeader(0, "LZMA properties blob must be 5 bytes")
	}

	d := options[0]
	p.LC = int(d % 9)
	d /= 9
	p.LP = int(d % 5)
	p.PB = int(d / 5)
	p.DictCap = int(uint32(options[1]) | uint32(options[2])<<8 | uint32(options[3])<<16 | uint32(options[4])<<24)

	return p, nil
}

func newLZMAEncoder(options []byte, sink io.Writer) (Encoder, error) {
	p, err := lzmaProperties(options)
	if err != nil {
		return nil, err
	}

	w, err := lzma.NewRawWriter(sink, p)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func newLZMADecoder(options []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	p, err := lzmaProperties(options)
	if err != nil {
		return nil, err
	}

	p.Size = int64(unpackSize)

	r, err := lzma.NewRawReader(source, p)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}
