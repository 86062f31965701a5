// Package writer implements the 7z write path: accumulating file entries
// into blocks, driving the encoder pipeline, and finalizing the signature
// and header.
package writer

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/pipeline"
)

// ContentMethod names one coder stage in application order: methods[0] is
// applied first to raw bytes (typically a filter), methods[len-1] last
// (typically the compressor or an encryption wrap).
type ContentMethod struct {
	ID         []byte
	Properties []byte
}

// ArchiveWriter accumulates FileEntry/Block records and a growing pack
// area in memory, and serializes the complete archive on Finish.
type ArchiveWriter struct {
	sink          io.Writer
	model         archive.Archive
	pack          bytes.Buffer
	methods       []ContentMethod
	encryptHeader bool
	password      []byte
}

// New returns a writer that serializes to sink on Finish.
func New(sink io.Writer) *ArchiveWriter {
	return &ArchiveWriter{
		sink:    sink,
		methods: []ContentMethod{DefaultContentMethod()},
	}
}

// NewInMemory returns a writer paired with the in-memory buffer Finish will
// write the complete archive to, for callers that don't have (or don't
// want) a real sink up front.
func NewInMemory() (*ArchiveWriter, *bytes.Buffer) {
	buf := &bytes.Buffer{}

	return New(buf), buf
}

// SetContentMethods replaces the coder chain new blocks are built with.
// Passing none resets to the default single-LZMA2 chain.
func (w *ArchiveWriter) SetContentMethods(methods ...ContentMethod) {
	if len(methods) == 0 {
		methods = []ContentMethod{DefaultContentMethod()}
	}

	w.methods = methods
}

// SetEncryptHeader controls whether Finish wraps the serialized header in
// the content methods' encryption coder (if any) before writing it.
func (w *ArchiveWriter) SetEncryptHeader(v bool) { w.encryptHeader = v }

// SetPassword sets the password used for any encryption coder present in
// the content methods, and for header encryption if enabled.
func (w *ArchiveWriter) SetPassword(password []byte) { w.password = password }

// blockCoders builds one block's Coders/BindPairs/PackedIndices from the
// writer's current content methods: methods are declared application-order
// (raw data enters methods[0] first); the block's Coders list is the
// reverse, so the pipeline's "uncompressed input enters the last-declared
// coder" convention puts methods[0] last. An AES256SHA method declared with
// no Properties gets a freshly generated salt/IV, since the coder itself
// never invents key material.
func blockCoders(methods []ContentMethod) ([]archive.Coder, error) {
	n := len(methods)
	coders := make([]archive.Coder, n)

	for i, m := range methods {
		props := m.Properties

		if bytes.Equal(m.ID, coder.IDAES256SHA) && len(props) == 0 {
			p, err := coder.NewAESProperties(coder.DefaultAESNumCyclesPower)
			if err != nil {
				return nil, err
			}

			props = p
		}

		coders[n-1-i] = archive.Coder{ID: m.ID, In: 1, Out: 1, Properties: props}
	}

	return coders, nil
}

func bindPairsFor(n int) []archive.BindPair {
	if n < 2 {
		return nil
	}

	pairs := make([]archive.BindPair, n-1)
	for i := 1; i < n; i++ {
		pairs[i-1] = archive.BindPair{InIndex: uint64(i), OutIndex: uint64(i - 1)}
	}

	return pairs
}

// PushArchiveEntry appends one entry as its own block. r is nil for
// directories and zero-byte files.
func (w *ArchiveWriter) PushArchiveEntry(entry archive.FileEntry, r io.Reader) error {
	if r == nil {
		entry.HasStream = false
		w.model.Files = append(w.model.Files, entry)

		return nil
	}

	return w.pushBlock([]archive.FileEntry{entry}, []io.Reader{r})
}

// PushArchiveEntries appends entries as one solid block. len(entries) must
// equal len(readers).
func (w *ArchiveWriter) PushArchiveEntries(entries []archive.FileEntry, readers []io.Reader) error {
	if len(entries) != len(readers) {
		return errs.ErrInvalidArgument
	}

	var withStream []archive.FileEntry

	var withReader []io.Reader

	for i, e := range entries {
		if readers[i] == nil {
			e.HasStream = false
			w.model.Files = append(w.model.Files, e)

			continue
		}

		withStream = append(withStream, e)
		withReader = append(withReader, readers[i])
	}

	if len(withStream) == 0 {
		return nil
	}

	return w.pushBlock(withStream, withReader)
}

// pushBlock drives the encoder pipeline for entries/readers as one solid
// (or singleton) block.
func (w *ArchiveWriter) pushBlock(entries []archive.FileEntry, readers []io.Reader) error {
	coders, err := blockCoders(w.methods)
	if err != nil {
		return err
	}

	packOffset := int64(w.pack.Len())

	chain, err := pipeline.BuildEncodeChain(coders, &w.pack, w.password)
	if err != nil {
		return err
	}

	blockCRC := crc32.NewIEEE()
	substreams := make([]archive.Substream, len(entries))

	for i, r := range readers {
		entryCRC := crc32.NewIEEE()
		mw := io.MultiWriter(chain, blockCRC, entryCRC)

		n, err := pipeline.CopyBuffer(mw, r)
		if err != nil {
			return err
		}

		substreams[i] = archive.Substream{Size: uint64(n), CRC: entryCRC.Sum32(), HasCRC: true}
	}

	if err := chain.Close(); err != nil {
		return err
	}

	block := archive.Block{
		Coders:           coders,
		BindPairs:        bindPairsFor(len(coders)),
		PackedIndices:    []uint64{0},
		Sizes:            chain.Sizes(),
		NumPackedStreams: 1,
		CRC:              blockCRC.Sum32(),
		HasCRC:           true,
		Substreams:       substreams,
	}

	blockIdx := len(w.model.Blocks)
	w.model.Blocks = append(w.model.Blocks, block)

	packedSize := uint64(w.pack.Len()) - uint64(packOffset)
	w.model.Pack.Sizes = append(w.model.Pack.Sizes, packedSize)
	w.model.Pack.CRCs = append(w.model.Pack.CRCs, crc32.ChecksumIEEE(w.pack.Bytes()[packOffset:]))
	w.model.Pack.HasCRC = append(w.model.Pack.HasCRC, true)

	for i, e := range entries {
		e.HasStream = true
		e.BlockIndex = blockIdx
		e.SubstreamIndex = i
		e.Size = substreams[i].Size
		e.CRC = substreams[i].CRC
		e.HasCRC = true

		if i == 0 {
			e.CompressedSize = packedSize
		}

		w.model.Files = append(w.model.Files, e)
	}

	return nil
}
