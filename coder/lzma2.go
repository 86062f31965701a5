package coder

import (
	"io"

	"github.com/ulikunitz/xz/lzma2"
)

// LZMA2 (method ID 21) is the default content codec (§4.6): a chunked
// wrapper around LZMA1 that allows dictionary resets and uncompressed
// chunks. The properties blob is a single byte encoding the dictionary
// size. Backed by github.com/ulikunitz/xz/lzma2, the same package the
// retrieved ulikunitz/xz source (xz/format.go) itself builds its container
// format on top of.
func init() {
	Register(IDLZMA2, "LZMA2", newLZMA2Encoder, newLZMA2Decoder, false)
}

func lzma2DictCap(options []byte) int {
	if len(options) == 0 {
		return 1 << 24
	}

	return lzma2.DecodeDictCap(options[0])
}

func newLZMA2Encoder(options []byte, sink io.Writer) (Encoder, error) {
	w, err := lzma2.NewWriter2(sink, lzma2DictCap(options))
	if err != nil {
		return nil, err
	}

	return w, nil
}

func newLZMA2Decoder(options []byte, source io.Reader, _, unpackSize int64) (Decoder, error) {
	r, err := lzma2.NewReader2(source, lzma2DictCap(options))
	if err != nil {
		return nil, err
	}

	return io.NopCloser(io.LimitReader(r, unpackSize)), nil
}
