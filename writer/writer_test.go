package writer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
)

func TestBlockCodersReversesApplicationOrder(t *testing.T) {
	methods := []ContentMethod{{ID: coder.IDDelta}, {ID: coder.IDLZMA2}}

	coders, err := blockCoders(methods)
	require.NoError(t, err)

	require.Len(t, coders, 2)
	require.Equal(t, coder.IDLZMA2, coders[0].ID)
	require.Equal(t, coder.IDDelta, coders[1].ID)
}

func TestBlockCodersSynthesizesAESProperties(t *testing.T) {
	coders, err := blockCoders([]ContentMethod{{ID: coder.IDLZMA2}, {ID: coder.IDAES256SHA}})
	require.NoError(t, err)

	require.Len(t, coders, 2)
	require.Equal(t, coder.IDAES256SHA, coders[0].ID)
	require.NotEmpty(t, coders[0].Properties)

	again, err := blockCoders([]ContentMethod{{ID: coder.IDAES256SHA}})
	require.NoError(t, err)
	require.NotEqual(t, coders[0].Properties, again[0].Properties)
}

func TestBindPairsFor(t *testing.T) {
	require.Nil(t, bindPairsFor(1))
	require.Equal(t, []archive.BindPair{{InIndex: 1, OutIndex: 0}}, bindPairsFor(2))
	require.Equal(t, []archive.BindPair{
		{InIndex: 1, OutIndex: 0},
		{InIndex: 2, OutIndex: 1},
	}, bindPairsFor(3))
}

func TestPushArchiveEntryDirectorySkipsBlock(t *testing.T) {
	w, _ := NewInMemory()

	require.NoError(t, w.PushArchiveEntry(archive.FileEntry{Name: "d", IsDir: true}, nil))

	require.Len(t, w.model.Files, 1)
	require.False(t, w.model.Files[0].HasStream)
	require.Empty(t, w.model.Blocks)
}
