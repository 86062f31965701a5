// Package pipeline composes a block's coder descriptors and bind pairs into
// one decode (pull) or encode (push) stream. The bind-pair table makes the
// composition a DAG walk rather than a fixed chain, so BCJ2-shaped
// non-linear topologies are representable even though no coder currently
// registered needs more than one input.
package pipeline

import (
	"fmt"
	"io"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/internal/bufpool"
)

// coderRanges returns the global input-index and output-index spans a given
// coder occupies, given the block's coders in declaration order.
func coderRanges(coders []archive.Coder) (inStart, outStart []int) {
	inStart = make([]int, len(coders))
	outStart = make([]int, len(coders))

	in, out := 0, 0

	for i, c := range coders {
		inStart[i] = in
		outStart[i] = out
		in += int(c.In)
		out += int(c.Out)
	}

	return inStart, outStart
}

func coderForOutput(coders []archive.Coder, outStart []int, globalOut uint64) int {
	for i, c := range coders {
		if int(globalOut) >= outStart[i] && int(globalOut) < outStart[i]+int(c.Out) {
			return i
		}
	}

	return -1
}

// packedSection describes one of a block's packed-stream inputs as an
// absolute byte range in the underlying archive.
type packedSection struct {
	offset, size int64
}

// packedSections computes the absolute byte ranges of block's packed
// streams: archiveAreaStart is the absolute offset where the pack area
// begins (32, the signature header size, plus archive.PackInfo.Base),
// blockOffset is the block's offset within the pack area as computed by
// archive.Archive.Build, pack is the archive's PackInfo, and
// firstPackedStream is block's first index into pack.Sizes.
func packedSections(archiveAreaStart int64, blockOffset uint64, pack archive.PackInfo, firstPackedStream, numPacked int) []packedSection {
	out := make([]packedSection, numPacked)
	offset := archiveAreaStart + int64(blockOffset)

	for i := 0; i < numPacked; i++ {
		size := int64(pack.Sizes[firstPackedStream+i])
		out[i] = packedSection{offset: offset, size: size}
		offset += size
	}

	return out
}

// BlockDecodeParams bundles everything NewBlockDecoder needs to locate a
// block's packed data within the archive file.
type BlockDecodeParams struct {
	ReaderAt          io.ReaderAt
	ArchiveAreaStart  int64
	BlockOffset       uint64
	Pack              archive.PackInfo
	FirstPackedStream int
	Password          []byte
}

// NewBlockDecoder builds a pull stream over block's primary output,
// resolving each coder's input recursively through the bind-pair table:
// an input bound to another coder's output chains to that coder's decoder;
// an unbound input is a packed stream read directly from the archive file
// via an io.SectionReader.
func NewBlockDecoder(p BlockDecodeParams, block *archive.Block) (io.ReadCloser, error) {
	inStart, outStart := coderRanges(block.Coders)
	sections := packedSections(p.ArchiveAreaStart, p.BlockOffset, p.Pack, p.FirstPackedStream, block.NumPackedStreams)

	built := make([]coder.Decoder, len(block.Coders))

	var build func(idx int) (coder.Decoder, error)

	build = func(idx int) (coder.Decoder, error) {
		if built[idx] != nil {
			return built[idx], nil
		}

		co := block.Coders[idx]
		if co.In != 1 {
			return nil, fmt.Errorf("pipeline: coder %x needs %d inputs, only single-input coders are supported", co.ID, co.In)
		}

		gi := uint64(inStart[idx])

		var (
			source   io.Reader
			packSize int64
		)

		if bp := block.InBindPair(gi); bp != nil {
			producer := coderForOutput(block.Coders, outStart, bp.OutIndex)
			if producer < 0 {
				return nil, fmt.Errorf("pipeline: bind pair references unknown output %d", bp.OutIndex)
			}

			pd, err := build(producer)
			if err != nil {
				return nil, err
			}

			source = pd
		} else {
			j := -1

			for k, pidx := range block.PackedIndices {
				if pidx == gi {
					j = k

					break
				}
			}

			if j < 0 || j >= len(sections) {
				return nil, fmt.Errorf("pipeline: coder %x input %d has neither bind pair nor packed stream", co.ID, gi)
			}

			sec := sections[j]
			source = io.NewSectionReader(p.ReaderAt, sec.offset, sec.size)
			packSize = sec.size
		}

		unpackSize := int64(0)
		if int(outStart[idx]) < len(block.Sizes) {
			unpackSize = int64(block.Sizes[outStart[idx]])
		}

		dec, err := coder.NewDecoder(co.ID, co.Properties, source, packSize, unpackSize)
		if err != nil {
			return nil, err
		}

		if coder.IsEncryption(co.ID) {
			ps, ok := dec.(coder.PasswordSetter)
			if !ok {
				return nil, fmt.Errorf("pipeline: encryption coder %x does not implement PasswordSetter", co.ID)
			}

			if len(p.Password) == 0 {
				return nil, errs.ErrPasswordRequired
			}

			if err := ps.SetPassword(p.Password); err != nil {
				return nil, err
			}
		}

		built[idx] = dec

		return dec, nil
	}

	primaryOut, ok := block.PrimaryOutputIndex()
	if !ok {
		return nil, fmt.Errorf("pipeline: block has no unbound primary output")
	}

	primaryCoder := coderForOutput(block.Coders, outStart, primaryOut)
	if primaryCoder < 0 {
		return nil, fmt.Errorf("pipeline: cannot resolve primary output coder")
	}

	return build(primaryCoder)
}

// CopyBuffer copies src to dst using a pooled 4 KiB buffer, the block
// decoder's standard byte-ferrying loop.
func CopyBuffer(dst io.Writer, src io.Reader) (int64, error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)

	return io.CopyBuffer(dst, src, buf)
}
