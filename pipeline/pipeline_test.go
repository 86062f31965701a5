package pipeline

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
)

func singleCopyBlock(data []byte) (archive.Block, []byte) {
	return archive.Block{
		Coders:           []archive.Coder{{ID: coder.IDCopy, In: 1, Out: 1}},
		PackedIndices:    []uint64{0},
		NumPackedStreams: 1,
		Sizes:            []uint64{uint64(len(data))},
	}, data
}

func TestBuildEncodeChainSingleCoder(t *testing.T) {
	data := []byte("hello, 7z")

	var sink bytes.Buffer

	coders := []archive.Coder{{ID: coder.IDCopy, In: 1, Out: 1}}
	chain, err := BuildEncodeChain(coders, &sink, nil)
	require.NoError(t, err)

	_, err = chain.Write(data)
	require.NoError(t, err)
	require.NoError(t, chain.Close())

	require.Equal(t, data, sink.Bytes())
	require.Equal(t, []uint64{uint64(len(data))}, chain.Sizes())
}

func TestBuildEncodeChainFilterPlusCompressor(t *testing.T) {
	data := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaab")

	var sink bytes.Buffer

	// Delta is applied first (entry point), Copy is closest to the sink.
	coders := []archive.Coder{
		{ID: coder.IDCopy, In: 1, Out: 1},
		{ID: coder.IDDelta, In: 1, Out: 1},
	}
	chain, err := BuildEncodeChain(coders, &sink, nil)
	require.NoError(t, err)

	_, err = chain.Write(data)
	require.NoError(t, err)
	require.NoError(t, chain.Close())

	sizes := chain.Sizes()
	require.Len(t, sizes, 2)
	require.EqualValues(t, len(data), sizes[1]) // Delta's input == raw size
	require.EqualValues(t, len(data), sizes[0]) // Copy's input == Delta's output size

	// Decode it back through NewBlockDecoder and confirm round-trip.
	block := archive.Block{
		Coders:           coders,
		BindPairs:        []archive.BindPair{{InIndex: 1, OutIndex: 0}},
		PackedIndices:    []uint64{0},
		NumPackedStreams: 1,
		Sizes:            sizes,
	}

	ra := bytes.NewReader(sink.Bytes())
	rc, err := NewBlockDecoder(BlockDecodeParams{
		ReaderAt:         ra,
		ArchiveAreaStart: 0,
		Pack:             archive.PackInfo{Sizes: []uint64{uint64(sink.Len())}},
	}, &block)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestNewBlockDecoderSingleCopyCoder(t *testing.T) {
	data := []byte("plain bytes, no transform")
	block, packed := singleCopyBlock(data)

	ra := bytes.NewReader(packed)
	rc, err := NewBlockDecoder(BlockDecodeParams{
		ReaderAt:         ra,
		ArchiveAreaStart: 0,
		Pack:             archive.PackInfo{Sizes: []uint64{uint64(len(packed))}},
	}, &block)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestNewBlockDecoderRejectsMultiInputCoder(t *testing.T) {
	block := archive.Block{
		Coders:           []archive.Coder{{ID: coder.IDCopy, In: 2, Out: 1}},
		PackedIndices:    []uint64{0, 1},
		NumPackedStreams: 2,
		Sizes:            []uint64{10},
	}

	_, err := NewBlockDecoder(BlockDecodeParams{
		ReaderAt:         bytes.NewReader(make([]byte, 20)),
		ArchiveAreaStart: 0,
		Pack:             archive.PackInfo{Sizes: []uint64{10, 10}},
	}, &block)
	require.Error(t, err)
}
