package reader

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/header"
)

func crc32Sum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}

// rawArchive assembles a complete, on-disk-shaped 7z byte stream (signature
// header, pack area, plain header) the way writer.ArchiveWriter.Finish
// would, so reader.Open can be driven directly against a hand-built model
// without going through the writer package.
func rawArchive(t *testing.T, pack, body []byte) []byte {
	t.Helper()

	var sig [header.SignatureSize]byte

	magic := header.Signature()
	copy(sig[:6], magic[:])
	sig[6] = header.FormatMajor
	sig[7] = header.FormatMinor

	binary.LittleEndian.PutUint64(sig[12:20], uint64(len(pack)))
	binary.LittleEndian.PutUint64(sig[20:28], uint64(len(body)))
	binary.LittleEndian.PutUint32(sig[28:32], crc32.ChecksumIEEE(body))
	binary.LittleEndian.PutUint32(sig[8:12], crc32.ChecksumIEEE(sig[12:32]))

	raw := append(append([]byte{}, sig[:]...), pack...)

	return append(raw, body...)
}

func TestOpenAndReadFile(t *testing.T) {
	// Build the signature header by hand: a direct pipeline-level test
	// doesn't need sevenz.Create's full Finish() machinery, only a valid
	// plain header immediately following the pack area.
	pack := []byte("first-file-contents")

	entry := archive.FileEntry{Name: "a.txt", HasStream: true, Size: uint64(len(pack)), CRC: crc32Sum(pack), HasCRC: true}
	a := &archive.Archive{
		Files: []archive.FileEntry{entry},
		Blocks: []archive.Block{{
			Coders:           []archive.Coder{{ID: coder.IDCopy, In: 1, Out: 1}},
			PackedIndices:    []uint64{0},
			NumPackedStreams: 1,
			Sizes:            []uint64{uint64(len(pack))},
			Substreams:       []archive.Substream{{Size: uint64(len(pack)), CRC: crc32Sum(pack), HasCRC: true}},
		}},
		Pack: archive.PackInfo{Sizes: []uint64{uint64(len(pack))}},
	}
	a.Build()

	body, err := header.EncodeHeaderBody(a)
	require.NoError(t, err)

	raw := rawArchive(t, pack, body)

	ar, err := Open(bytes.NewReader(raw), int64(len(raw)), nil)
	require.NoError(t, err)
	defer ar.Close()

	got, err := ar.ReadFile("a.txt")
	require.NoError(t, err)
	require.Equal(t, pack, got)
}

func TestReadFileChecksumMismatch(t *testing.T) {
	pack := []byte("bytes that will be corrupted")

	entry := archive.FileEntry{Name: "a.txt", HasStream: true, Size: uint64(len(pack)), CRC: crc32Sum(pack), HasCRC: true}
	a := &archive.Archive{
		Files: []archive.FileEntry{entry},
		Blocks: []archive.Block{{
			Coders:           []archive.Coder{{ID: coder.IDCopy, In: 1, Out: 1}},
			PackedIndices:    []uint64{0},
			NumPackedStreams: 1,
			Sizes:            []uint64{uint64(len(pack))},
			Substreams:       []archive.Substream{{Size: uint64(len(pack)), CRC: crc32Sum(pack), HasCRC: true}},
		}},
		Pack: archive.PackInfo{Sizes: []uint64{uint64(len(pack))}},
	}
	a.Build()

	body, err := header.EncodeHeaderBody(a)
	require.NoError(t, err)

	corrupted := append([]byte{}, pack...)
	corrupted[0] ^= 0xFF

	raw := rawArchive(t, corrupted, body)

	ar, err := Open(bytes.NewReader(raw), int64(len(raw)), nil)
	require.NoError(t, err)
	defer ar.Close()

	_, err = ar.ReadFile("a.txt")
	require.Error(t, err)
	require.True(t, errs.IsChecksumMismatch(err))
}

func TestForEachEntrySkipsDirectories(t *testing.T) {
	pack := []byte("onlyfile")

	a := &archive.Archive{
		Files: []archive.FileEntry{
			{Name: "dir", IsDir: true},
			{Name: "f.txt", HasStream: true, Size: uint64(len(pack)), CRC: crc32Sum(pack), HasCRC: true},
		},
		Blocks: []archive.Block{{
			Coders:           []archive.Coder{{ID: coder.IDCopy, In: 1, Out: 1}},
			PackedIndices:    []uint64{0},
			NumPackedStreams: 1,
			Sizes:            []uint64{uint64(len(pack))},
			Substreams:       []archive.Substream{{Size: uint64(len(pack)), CRC: crc32Sum(pack), HasCRC: true}},
		}},
		Pack: archive.PackInfo{Sizes: []uint64{uint64(len(pack))}},
	}
	a.Build()

	body, err := header.EncodeHeaderBody(a)
	require.NoError(t, err)

	raw := rawArchive(t, pack, body)

	ar, err := Open(bytes.NewReader(raw), int64(len(raw)), nil)
	require.NoError(t, err)
	defer ar.Close()

	dec, err := NewBlockDecoder(ar, 0)
	require.NoError(t, err)
	defer dec.Close()

	require.Equal(t, 1, dec.EntryCount())

	var names []string

	for fi, r := range dec.All() {
		names = append(names, fi.Name)

		data, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, pack, data)
	}

	require.Equal(t, []string{"f.txt"}, names)
}
