package sevenz

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/coder"
	"github.com/go7z/sevenz/writer"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	w, buf := writer.NewInMemory()
	w.SetContentMethods(writer.ContentMethod{ID: coder.IDCopy})

	entries := []archive.FileEntry{
		{Name: "hello.txt", ModifiedTime: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC), HasModTime: true},
		{Name: "world.txt"},
	}
	readers := []io.Reader{
		bytes.NewReader([]byte("hello, 7z archive")),
		bytes.NewReader([]byte("a second solid-block member")),
	}

	require.NoError(t, w.PushArchiveEntries(entries, readers))
	require.NoError(t, w.PushArchiveEntry(archive.FileEntry{Name: "emptydir", IsDir: true}, nil))
	require.NoError(t, w.Finish())

	require.Greater(t, buf.Len(), 0)

	a, err := OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	defer a.Close()

	files := a.Files()
	require.Len(t, files, 3)
	require.Equal(t, "hello.txt", files[0].Name)
	require.Equal(t, "world.txt", files[1].Name)
	require.Equal(t, "emptydir", files[2].Name)
	require.True(t, files[2].IsDir)

	got, err := a.ReadFile("hello.txt")
	require.NoError(t, err)
	require.Equal(t, "hello, 7z archive", string(got))

	got, err = a.ReadFile("world.txt")
	require.NoError(t, err)
	require.Equal(t, "a second solid-block member", string(got))

	_, err = a.ReadFile("missing.txt")
	require.Error(t, err)
}

func TestWriteThenReadEncryptedRoundTrip(t *testing.T) {
	password := "correct horse battery staple"

	w, buf := writer.NewInMemory()
	w.SetContentMethods(
		writer.ContentMethod{ID: coder.IDLZMA2},
		writer.ContentMethod{ID: coder.IDAES256SHA},
	)
	w.SetEncryptHeader(true)
	w.SetPassword([]byte(password))

	entries := []archive.FileEntry{
		{Name: "secret.txt"},
	}
	readers := []io.Reader{
		bytes.NewReader([]byte("the launch codes are 12345")),
	}

	require.NoError(t, w.PushArchiveEntries(entries, readers))
	require.NoError(t, w.Finish())

	a, err := OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()), WithPassword(password))
	require.NoError(t, err)
	defer a.Close()

	require.Len(t, a.Files(), 1)

	got, err := a.ReadFile("secret.txt")
	require.NoError(t, err)
	require.Equal(t, "the launch codes are 12345", string(got))

	_, err = OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()), WithPassword("wrong password"))
	require.Error(t, err)
}

func TestWriteThenReadEncodedHeaderRoundTrip(t *testing.T) {
	w, buf := writer.NewInMemory()

	const fileCount = 2000

	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("a-fairly-long-repeated-directory-path/nested/segment/entry-%04d.txt", i)
		require.NoError(t, w.PushArchiveEntry(archive.FileEntry{Name: name}, nil))
	}

	require.NoError(t, w.Finish())

	a, err := OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	defer a.Close()

	files := a.Files()
	require.Len(t, files, fileCount)
	require.Equal(t, "a-fairly-long-repeated-directory-path/nested/segment/entry-0000.txt", files[0].Name)
	require.Equal(t, "a-fairly-long-repeated-directory-path/nested/segment/entry-1999.txt", files[fileCount-1].Name)
}

func TestWriteThenReadNonSolidRoundTrip(t *testing.T) {
	w, buf := writer.NewInMemory()
	w.SetContentMethods(writer.ContentMethod{ID: coder.IDLZMA2})

	require.NoError(t, w.PushArchiveEntry(archive.FileEntry{Name: "one.bin"}, bytes.NewReader(bytes.Repeat([]byte("x"), 500))))
	require.NoError(t, w.PushArchiveEntry(archive.FileEntry{Name: "two.bin"}, bytes.NewReader(bytes.Repeat([]byte("y"), 700))))
	require.NoError(t, w.Finish())

	a, err := OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	defer a.Close()

	got, err := a.ReadFile("one.bin")
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte("x"), 500), got)

	got, err = a.ReadFile("two.bin")
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte("y"), 700), got)
}
