package reader

import (
	"hash"
	"hash/crc32"
	"io"
	"iter"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/header"
	"github.com/go7z/sevenz/pipeline"
)

// BlockDecoder decodes one block's primary output and exposes it as a
// sequence of per-file sub-readers, in the block's fixed file order.
// Draining one sub-reader (fully or via advance) is required before the
// next becomes valid, since the underlying stream is a single solid pull.
type BlockDecoder struct {
	archive    *Archive
	blockIndex int
	block      *archive.Block
	stream     io.ReadCloser
	entryIdx   []int // indices into archive.model.Files, this block's files in order
	closed     bool
}

// ThreadHint is a no-op placeholder for a codec thread-count hint; none of
// the wired codecs in this engine honor it, but the parameter is kept so
// callers that do pass a hint compile against the same shape a
// threading-aware codec would expect.
type ThreadHint int

// NewBlockDecoder opens blockIndex for decoding against a's source.
func NewBlockDecoder(a *Archive, blockIndex int) (*BlockDecoder, error) {
	return NewBlockDecoderHint(a, blockIndex, 0)
}

// NewBlockDecoderHint is NewBlockDecoder with an explicit thread-count hint.
func NewBlockDecoderHint(a *Archive, blockIndex int, _ ThreadHint) (*BlockDecoder, error) {
	if blockIndex < 0 || blockIndex >= len(a.model.Blocks) {
		return nil, errs.ErrInvalidArgument
	}

	block := &a.model.Blocks[blockIndex]

	params := pipeline.BlockDecodeParams{
		ReaderAt:          a.source,
		ArchiveAreaStart:  header.SignatureSize + int64(a.model.Pack.Base),
		BlockOffset:       a.model.Stream.BlockOffset[blockIndex],
		Pack:              a.model.Pack,
		FirstPackedStream: a.model.Stream.FirstPackedStream[blockIndex],
		Password:          a.password,
	}

	stream, err := pipeline.NewBlockDecoder(params, block)
	if err != nil {
		return nil, err
	}

	first := a.model.Stream.FirstFile[blockIndex]
	entryIdx := make([]int, 0, len(block.Substreams))

	// Directories and empty files may be interspersed among a block's
	// stream-bearing entries in the file table, so skip past them rather
	// than treating one as the end of the block.
	for i := first; i < len(a.model.Files) && len(entryIdx) < len(block.Substreams); i++ {
		if !a.model.Files[i].HasStream || a.model.Files[i].BlockIndex != blockIndex {
			continue
		}

		entryIdx = append(entryIdx, i)
	}

	return &BlockDecoder{
		archive:    a,
		blockIndex: blockIndex,
		block:      block,
		stream:     stream,
		entryIdx:   entryIdx,
	}, nil
}

// EntryCount returns how many files this block's substreams cover.
func (d *BlockDecoder) EntryCount() int { return len(d.entryIdx) }

// Entries returns the block's files, in fixed order, as pointers into the
// archive's file table.
func (d *BlockDecoder) Entries() []*archive.FileEntry {
	out := make([]*archive.FileEntry, len(d.entryIdx))
	for i, idx := range d.entryIdx {
		out[i] = &d.archive.model.Files[idx]
	}

	return out
}

// Close releases the underlying decode pipeline. It does not check the
// block-level CRC; only the per-file CRCs checked by each EntryReader are
// verified on this path.
func (d *BlockDecoder) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true

	return d.stream.Close()
}

// EntryReader is a sub-reader limited to one file's declared size, tracking
// a running CRC32 that is verified against the file's declared checksum at
// EOF.
type EntryReader struct {
	entry   *archive.FileEntry
	r       io.Reader
	left    int64
	crc     hash.Hash32
	checked bool
}

func (r *EntryReader) Read(p []byte) (int, error) {
	if r.left <= 0 {
		return 0, r.eofErr()
	}

	if int64(len(p)) > r.left {
		p = p[:r.left]
	}

	n, err := r.r.Read(p)
	if n > 0 {
		r.crc.Write(p[:n])
		r.left -= int64(n)
	}

	if err == io.EOF && r.left > 0 {
		return n, errs.ErrUnexpectedEOF
	}

	if r.left == 0 {
		if verr := r.verify(); verr != nil {
			return n, verr
		}

		return n, io.EOF
	}

	return n, err
}

// eofErr returns the verification error (checked exactly once) in place of
// a plain io.EOF, so a CRC mismatch surfaces to whatever Read call drains
// the last byte.
func (r *EntryReader) eofErr() error {
	if err := r.verify(); err != nil {
		return err
	}

	return io.EOF
}

func (r *EntryReader) verify() error {
	if r.checked {
		return nil
	}

	r.checked = true

	if r.entry.HasCRC {
		if got := r.crc.Sum32(); got != r.entry.CRC {
			return errs.NewChecksumMismatch(errs.ScopeSubstream, r.entry.Name, r.entry.CRC, got)
		}
	}

	return nil
}

// drain reads and discards any bytes the caller left in r, so the next
// sub-reader starts at the right offset in the solid stream.
func (r *EntryReader) drain() error {
	_, err := pipeline.CopyBuffer(io.Discard, r)

	return err
}

// ForEachEntry drives the block's entries in order, calling cb with each
// file and its sub-reader, and propagates the first error (from cb or from
// CRC verification). Only the block's stream-bearing files are visited;
// directories and empty files are not passed to cb.
func (d *BlockDecoder) ForEachEntry(cb func(*archive.FileEntry, *EntryReader) error) error {
	for _, idx := range d.entryIdx {
		entry := &d.archive.model.Files[idx]
		er := &EntryReader{entry: entry, r: d.stream, left: int64(entry.Size), crc: crc32.NewIEEE()}

		err := cb(entry, er)

		if drainErr := er.drain(); err == nil {
			err = drainErr
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// All returns a range-over-func iterator over the block's (file, reader)
// pairs, an alternative to ForEachEntry for range-for consumption. Breaking
// out of the range early leaves the remaining sub-reader undrained; the
// caller must not reuse the BlockDecoder for anything but Close afterward.
func (d *BlockDecoder) All() iter.Seq2[*archive.FileEntry, *EntryReader] {
	return func(yield func(*archive.FileEntry, *EntryReader) bool) {
		for _, idx := range d.entryIdx {
			entry := &d.archive.model.Files[idx]
			er := &EntryReader{entry: entry, r: d.stream, left: int64(entry.Size), crc: crc32.NewIEEE()}

			if !yield(entry, er) {
				return
			}

			_ = er.drain()
		}
	}
}
