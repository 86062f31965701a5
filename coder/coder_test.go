package coder

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopyRoundTrip(t *testing.T) {
	data := []byte("round trip through the copy coder")

	var buf bytes.Buffer

	enc, err := NewEncoder(IDCopy, nil, &buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	dec, err := NewDecoder(IDCopy, nil, &buf, int64(buf.Len()), int64(len(data)))
	require.NoError(t, err)

	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDeltaRoundTrip(t *testing.T) {
	data := []byte("aaaaabbbbbcccccdddddeeeeefffffggggg")

	var buf bytes.Buffer

	enc, err := NewEncoder(IDDelta, []byte{0}, &buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	dec, err := NewDecoder(IDDelta, []byte{0}, &buf, int64(buf.Len()), int64(len(data)))
	require.NoError(t, err)

	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestNewEncoderUnknownID(t *testing.T) {
	_, err := NewEncoder([]byte{0xFE, 0xFE}, nil, &bytes.Buffer{})
	require.Error(t, err)
}

func TestIsEncryption(t *testing.T) {
	require.True(t, IsEncryption(IDAES256SHA))
	require.False(t, IsEncryption(IDCopy))
	require.False(t, IsEncryption([]byte{0xFE, 0xFE}))
}

func TestNameLookup(t *testing.T) {
	require.Equal(t, "Copy", Name(IDCopy))
	require.Equal(t, "", Name([]byte{0xFE, 0xFE}))
}
