package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go7z/sevenz/archive"
)

func sampleArchive() *archive.Archive {
	a := &archive.Archive{
		Files: []archive.FileEntry{
			{Name: "a.txt", HasStream: true, Size: 11, CRC: 0xDEADBEEF, HasCRC: true,
				ModifiedTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), HasModTime: true,
				Attributes: 0x20, HasAttribs: true},
			{Name: "dir", IsDir: true},
			{Name: "b.txt", HasStream: true, Size: 4, CRC: 0x12345678, HasCRC: true},
		},
		Blocks: []archive.Block{
			{
				Coders:           []archive.Coder{{ID: []byte{0x00}, In: 1, Out: 1}},
				PackedIndices:    []uint64{0},
				NumPackedStreams: 1,
				Sizes:            []uint64{11},
				CRC:              0xDEADBEEF,
				HasCRC:           true,
				Substreams:       []archive.Substream{{Size: 11, CRC: 0xDEADBEEF, HasCRC: true}},
			},
			{
				Coders:           []archive.Coder{{ID: []byte{0x00}, In: 1, Out: 1}},
				PackedIndices:    []uint64{0},
				NumPackedStreams: 1,
				Sizes:            []uint64{4},
				CRC:              0x12345678,
				HasCRC:           true,
				Substreams:       []archive.Substream{{Size: 4, CRC: 0x12345678, HasCRC: true}},
			},
		},
		Pack: archive.PackInfo{Sizes: []uint64{11, 4}, CRCs: []uint32{0xDEADBEEF, 0x12345678}, HasCRC: []bool{true, true}},
	}
	a.Build()

	return a
}

func TestEncodeHeaderBodyRoundTrip(t *testing.T) {
	want := sampleArchive()

	body, err := EncodeHeaderBody(want)
	require.NoError(t, err)

	got := &archive.Archive{}
	c := newCursor(body, 0)

	id, err := c.id()
	require.NoError(t, err)
	require.EqualValues(t, idHeader, id)

	require.NoError(t, readHeaderBody(c, got))
	got.Build()

	require.Len(t, got.Files, len(want.Files))

	for i := range want.Files {
		require.Equal(t, want.Files[i].Name, got.Files[i].Name, "file %d name", i)
		require.Equal(t, want.Files[i].IsDir, got.Files[i].IsDir, "file %d IsDir", i)
		require.Equal(t, want.Files[i].HasStream, got.Files[i].HasStream, "file %d HasStream", i)
		require.Equal(t, want.Files[i].Size, got.Files[i].Size, "file %d Size", i)
		require.Equal(t, want.Files[i].CRC, got.Files[i].CRC, "file %d CRC", i)
	}

	require.True(t, got.Files[0].HasModTime)
	require.Equal(t, want.Files[0].ModifiedTime.Unix(), got.Files[0].ModifiedTime.Unix())
	require.True(t, got.Files[0].HasAttribs)
	require.Equal(t, want.Files[0].Attributes, got.Files[0].Attributes)

	require.Len(t, got.Blocks, 2)
	require.Equal(t, want.Blocks[0].CRC, got.Blocks[0].CRC)
	require.Equal(t, want.Blocks[1].Sizes, got.Blocks[1].Sizes)
}

func TestFiletimeRoundTrip(t *testing.T) {
	want := time.Date(2023, 6, 15, 12, 30, 45, 0, time.UTC)
	got := filetimeToTime(timeToFiletime(want))
	require.Equal(t, want.Unix(), got.Unix())
}
