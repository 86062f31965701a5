package writer

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
	"github.com/go7z/sevenz/header"
	"github.com/go7z/sevenz/pipeline"
)

// headerMethods is the fixed content chain new headers are compressed (and,
// if requested, encrypted) with: LZMA2 always, with AES-256-SHA256 appended
// only when SetEncryptHeader(true) and a password have been set and the
// content methods include an encryption coder. The header's AES coder gets
// its own freshly generated salt/IV rather than reusing a content block's.
func (w *ArchiveWriter) headerMethods() []ContentMethod {
	methods := []ContentMethod{DefaultContentMethod()}

	if !w.encryptHeader || len(w.password) == 0 {
		return methods
	}

	for _, m := range w.methods {
		if coder.IsEncryption(m.ID) {
			return append(methods, ContentMethod{ID: coder.IDAES256SHA})
		}
	}

	return methods
}

// encodeHeader compresses plain through w.headerMethods(), returning the
// compressed bytes and the block describing how to decode them back.
func (w *ArchiveWriter) encodeHeader(plain []byte) ([]byte, archive.Block, error) {
	coders, err := blockCoders(w.headerMethods())
	if err != nil {
		return nil, archive.Block{}, err
	}

	buf := &byteSink{}

	chain, err := pipeline.BuildEncodeChain(coders, buf, w.password)
	if err != nil {
		return nil, archive.Block{}, err
	}

	if _, err := chain.Write(plain); err != nil {
		return nil, archive.Block{}, err
	}

	if err := chain.Close(); err != nil {
		return nil, archive.Block{}, err
	}

	block := archive.Block{
		Coders:           coders,
		BindPairs:        bindPairsFor(len(coders)),
		PackedIndices:    []uint64{0},
		Sizes:            chain.Sizes(),
		NumPackedStreams: 1,
		CRC:              crc32.ChecksumIEEE(plain),
		HasCRC:           true,
	}

	return buf.Bytes(), block, nil
}

// byteSink is a minimal growable io.Writer, kept local to avoid pulling
// bytes.Buffer's wider API into this one spot.
type byteSink struct{ buf []byte }

func (s *byteSink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)

	return len(p), nil
}

func (s *byteSink) Bytes() []byte { return s.buf }

// Finish serializes the complete archive — pack area, then header — to the
// sink, writing the final 32-byte signature header last. A header is only
// ever emitted through w.encodeHeader's coder chain (becoming an
// EncodedHeader wrapper instead of a plain NextHeader) when that saves more
// than 20 bytes, or unconditionally when headerMethods includes encryption,
// since a plain header can never be encrypted. The writer must not be used
// again afterward.
func (w *ArchiveWriter) Finish() error {
	w.model.Build()

	plain, err := header.EncodeHeaderBody(&w.model)
	if err != nil {
		return err
	}

	headerBytes := plain
	headerBase := uint64(w.pack.Len())

	requireEncryptedHeader := len(w.headerMethods()) > 1

	encoded, block, encErr := w.encodeHeader(plain)
	if encErr != nil && requireEncryptedHeader {
		return encErr
	}

	if encErr == nil && (requireEncryptedHeader || uint64(len(encoded))+20 < uint64(len(plain))) {
		pack := archive.PackInfo{
			Base:   headerBase,
			Sizes:  []uint64{uint64(len(encoded))},
			CRCs:   []uint32{crc32.ChecksumIEEE(encoded)},
			HasCRC: []bool{true},
		}

		headerBytes = header.EncodeEncodedHeaderWrapper(pack, block)

		if _, err := w.pack.Write(encoded); err != nil {
			return err
		}
	}

	startOffset := uint64(w.pack.Len())
	startSize := uint64(len(headerBytes))
	startCRC := crc32.ChecksumIEEE(headerBytes)

	var sig [header.SignatureSize]byte

	magic := header.Signature()
	copy(sig[:6], magic[:])
	sig[6] = header.FormatMajor
	sig[7] = header.FormatMinor

	binary.LittleEndian.PutUint64(sig[12:20], startOffset)
	binary.LittleEndian.PutUint64(sig[20:28], startSize)
	binary.LittleEndian.PutUint32(sig[28:32], startCRC)
	binary.LittleEndian.PutUint32(sig[8:12], crc32.ChecksumIEEE(sig[12:32]))

	if _, err := w.sink.Write(sig[:]); err != nil {
		return err
	}

	if _, err := w.sink.Write(w.pack.Bytes()); err != nil {
		return err
	}

	_, err = w.sink.Write(headerBytes)

	return err
}
