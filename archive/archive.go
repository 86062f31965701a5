// Package archive holds the in-memory 7z archive model: the file table, the
// block (folder) table, and the derived StreamMap linking them to byte
// offsets in the pack area.
package archive

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// FileEntry describes one entry in the archive's file table.
type FileEntry struct {
	Name       string
	IsDir      bool
	IsAnti     bool
	HasStream  bool
	Size       uint64
	CRC        uint32
	HasCRC     bool
	Attributes uint32
	HasAttribs bool

	CreationTime   time.Time
	HasCreatedTime bool
	AccessTime     time.Time
	HasAccessTime  bool
	ModifiedTime   time.Time
	HasModTime     bool

	// BlockIndex is the index into Archive.Blocks this entry's payload
	// lives in; only meaningful when HasStream is true.
	BlockIndex int
	// SubstreamIndex is this entry's ordinal among the substreams of its
	// block.
	SubstreamIndex int
	// CompressedSize is this entry's share of its block's packed size,
	// solid-aware: for a solid block every substream after the first
	// reports 0, since the block is only randomly-accessible as a whole.
	CompressedSize uint64
}

// Coder is one stage of a block's pipeline: a codec, filter, or encryption
// transform identified by its wire ID, plus its properties blob and arity.
type Coder struct {
	ID         []byte
	In, Out    uint64
	Properties []byte
}

// BindPair links one coder's input index to another coder's output index,
// within one block, making the pipeline a DAG instead of a strict chain.
type BindPair struct {
	InIndex, OutIndex uint64
}

// Block is one folder: an ordered list of coders wired together by bind
// pairs, fed by some number of packed streams, producing one primary
// output that is sliced into substreams (one per contained file).
type Block struct {
	Coders   []Coder
	BindPairs []BindPair
	// PackedIndices lists, for each of the block's packed inputs, which
	// coder input index it feeds (the inverse of looking up a coder
	// input's packed-stream ordinal).
	PackedIndices []uint64
	// Sizes holds each coder's declared output size, in coder
	// declaration order; the block's primary (overall unpacked) output
	// size is Sizes at PrimaryOutputIndex() (see UnpackSize).
	Sizes []uint64
	CRC   uint32
	HasCRC bool

	// NumPackedStreams is how many of the block's unbound coder inputs
	// are fed directly from the pack area (as opposed to another
	// coder's output via a bind pair).
	NumPackedStreams int

	// Substreams holds one entry per file packed into this block, in
	// file order.
	Substreams []Substream
}

// Substream is one file's share of a block's decoded output.
type Substream struct {
	Size   uint64
	CRC    uint32
	HasCRC bool
}

// InBindPair returns the bind pair whose InIndex is i, or nil.
func (b *Block) InBindPair(i uint64) *BindPair {
	for k := range b.BindPairs {
		if b.BindPairs[k].InIndex == i {
			return &b.BindPairs[k]
		}
	}

	return nil
}

// OutBindPair returns the bind pair whose OutIndex is i, or nil.
func (b *Block) OutBindPair(i uint64) *BindPair {
	for k := range b.BindPairs {
		if b.BindPairs[k].OutIndex == i {
			return &b.BindPairs[k]
		}
	}

	return nil
}

// NumOutputs returns the total number of coder outputs in the block.
func (b *Block) NumOutputs() uint64 {
	var n uint64
	for _, c := range b.Coders {
		n += c.Out
	}

	return n
}

// NumInputs returns the total number of coder inputs in the block.
func (b *Block) NumInputs() uint64 {
	var n uint64
	for _, c := range b.Coders {
		n += c.In
	}

	return n
}

// PrimaryOutputIndex returns the index (in overall output numbering) of the
// one coder output that is not consumed by any bind pair — the block's
// final decoded stream.
func (b *Block) PrimaryOutputIndex() (uint64, bool) {
	total := b.NumOutputs()
	for i := uint64(0); i < total; i++ {
		if b.OutBindPair(i) == nil {
			return i, true
		}
	}

	return 0, false
}

// UnpackSize returns the block's overall decoded size: Sizes at the primary
// output index, or the last Sizes entry if that lookup fails (defensive
// fallback mirroring bodgit/sevenzip's folder.unpackSize).
func (b *Block) UnpackSize() uint64 {
	if len(b.Sizes) == 0 {
		return 0
	}

	if idx, ok := b.PrimaryOutputIndex(); ok && int(idx) < len(b.Sizes) {
		return b.Sizes[idx]
	}

	return b.Sizes[len(b.Sizes)-1]
}

// PackInfo is the base offset and per-stream sizes/CRCs of the pack area.
type PackInfo struct {
	Base     uint64
	Sizes    []uint64
	CRCs     []uint32
	HasCRC   []bool
}

// StreamMap is derived, once, from a parsed header: the mapping from block
// index to its first packed stream and pack-area byte offset, and from
// file index to its block.
type StreamMap struct {
	// FirstPackedStream[i] is the index into PackInfo.Sizes of block i's
	// first packed stream.
	FirstPackedStream []int
	// BlockOffset[i] is the pack-area byte offset (relative to
	// PackInfo.Base) of block i.
	BlockOffset []uint64
	// FirstFile[i] is the index into Archive.Files of block i's first
	// file.
	FirstFile []int
}

// Archive is the parsed, read-only (from the caller's perspective) 7z
// archive model.
type Archive struct {
	Files  []FileEntry
	Blocks []Block
	Pack   PackInfo
	Stream StreamMap

	// HeaderPos is the absolute byte offset of the start header,
	// i.e. signature-header size (32) plus the pack area's length.
	HeaderPos int64

	nameIndex map[uint64][]int
}

// Build derives a.Stream and a.nameIndex from a.Files/a.Blocks/a.Pack. It
// must be called once after populating those fields, and again after any
// in-place rebuild (the header parser and the writer both call it).
func (a *Archive) Build() {
	a.Stream = StreamMap{
		FirstPackedStream: make([]int, len(a.Blocks)),
		BlockOffset:       make([]uint64, len(a.Blocks)),
		FirstFile:         make([]int, len(a.Blocks)),
	}

	packIdx := 0
	offset := uint64(0)
	fileIdx := 0
	substreamCounts := a.substreamCountsWithStream()

	for i := range a.Blocks {
		a.Stream.FirstPackedStream[i] = packIdx
		a.Stream.BlockOffset[i] = offset

		for j := 0; j < a.Blocks[i].NumPackedStreams; j++ {
			offset += a.Pack.Sizes[packIdx]
			packIdx++
		}

		// Directories and empty files can be interspersed with a block's
		// stream-bearing entries anywhere in the file table, so finding
		// this block's first file means skipping non-stream entries
		// rather than assuming a fixed stride.
		need := substreamCounts[i]
		got := 0
		first := fileIdx

		for got < need && fileIdx < len(a.Files) {
			if a.Files[fileIdx].HasStream {
				if got == 0 {
					first = fileIdx
				}

				got++
			}

			fileIdx++
		}

		a.Stream.FirstFile[i] = first
	}

	a.nameIndex = make(map[uint64][]int, len(a.Files))
	for i, f := range a.Files {
		h := xxhash.Sum64String(f.Name)
		a.nameIndex[h] = append(a.nameIndex[h], i)
	}
}

func (a *Archive) substreamCountsWithStream() []int {
	counts := make([]int, len(a.Blocks))
	for i, b := range a.Blocks {
		counts[i] = len(b.Substreams)
	}

	return counts
}

// Lookup finds a file by exact name, using the xxHash64 index built by
// Build to avoid a linear scan, resolving the (rare, ~2^-64) hash collision
// by falling back to a direct name compare against candidates.
func (a *Archive) Lookup(name string) (*FileEntry, int, bool) {
	h := xxhash.Sum64String(name)

	for _, idx := range a.nameIndex[h] {
		if a.Files[idx].Name == name {
			return &a.Files[idx], idx, true
		}
	}

	return nil, 0, false
}
