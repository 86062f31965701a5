package archive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockPrimaryOutputIndexSingleCoder(t *testing.T) {
	b := Block{
		Coders: []Coder{{ID: IDTest, In: 1, Out: 1}},
		Sizes:  []uint64{42},
	}

	idx, ok := b.PrimaryOutputIndex()
	require.True(t, ok)
	require.EqualValues(t, 0, idx)
	require.EqualValues(t, 42, b.UnpackSize())
}

func TestBlockPrimaryOutputIndexFilterChain(t *testing.T) {
	// coders[0] is closest to the packed stream, coders[1] is the outermost
	// filter whose output is the block's final decoded data.
	b := Block{
		Coders: []Coder{
			{ID: IDTest, In: 1, Out: 1},
			{ID: IDTest, In: 1, Out: 1},
		},
		BindPairs: []BindPair{{InIndex: 1, OutIndex: 0}},
		Sizes:     []uint64{100, 120},
	}

	idx, ok := b.PrimaryOutputIndex()
	require.True(t, ok)
	require.EqualValues(t, 1, idx)
	require.EqualValues(t, 120, b.UnpackSize())
}

func TestArchiveLookup(t *testing.T) {
	a := &Archive{
		Files: []FileEntry{
			{Name: "a.txt"},
			{Name: "dir/b.txt"},
		},
	}
	a.Build()

	fi, idx, ok := a.Lookup("dir/b.txt")
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, "dir/b.txt", fi.Name)

	_, _, ok = a.Lookup("missing")
	require.False(t, ok)
}

func TestArchiveBuildStreamMap(t *testing.T) {
	a := &Archive{
		Files: []FileEntry{
			{Name: "solid1", HasStream: true},
			{Name: "solid2", HasStream: true},
			{Name: "dir", IsDir: true},
			{Name: "single", HasStream: true},
		},
		Blocks: []Block{
			{NumPackedStreams: 1, Substreams: []Substream{{Size: 10}, {Size: 20}}},
			{NumPackedStreams: 1, Substreams: []Substream{{Size: 5}}},
		},
		Pack: PackInfo{Sizes: []uint64{15, 6}},
	}
	a.Build()

	require.Equal(t, []int{0, 1}, a.Stream.FirstPackedStream)
	require.Equal(t, []uint64{0, 15}, a.Stream.BlockOffset)
	// file index 2 ("dir") has no stream and sits between the two blocks'
	// stream-bearing entries, so block 1's first file is index 3, not 2.
	require.Equal(t, []int{0, 3}, a.Stream.FirstFile)
}

// IDTest is a placeholder coder ID used only by this package's tests, where
// no registered codec needs to actually run.
var IDTest = []byte{0xFE}
