package coder

import "github.com/go7z/sevenz/errs"

// Coder IDs as they appear in a block's coder descriptor, per the 7z method
// ID registry. Lengths vary 1..15 bytes; these are the ones this engine
// wires to a concrete Go implementation (see DESIGN.md for the library each
// one is backed by).
var (
	IDCopy      = []byte{0x00}
	IDDelta     = []byte{0x03}
	IDBCJX86    = []byte{0x04, 0x03, 0x03, 0x01}
	IDLZMA      = []byte{0x03, 0x01, 0x01}
	IDLZMA2     = []byte{0x21}
	IDPPMd      = []byte{0x03, 0x04, 0x01}
	IDDeflate   = []byte{0x04, 0x01, 0x08}
	IDBZip2     = []byte{0x04, 0x02, 0x02}
	IDBrotli    = []byte{0x04, 0x04, 0x02}
	IDLZ4       = []byte{0x04, 0x04, 0x04}
	IDZstd      = []byte{0x04, 0x04, 0x05}
	IDAES256SHA = []byte{0x06, 0xF1, 0x07, 0x01}
)

func newUnsupported(id []byte) error {
	return errs.NewUnsupportedCodec(id)
}
