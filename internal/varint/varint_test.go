package varint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 127, 128, 129, 0x3FFF, 0x4000, 0xFFFF,
		1 << 20, 1 << 27, 1<<27 + 1, 1 << 34, 1 << 41, 1 << 48, 1 << 55,
		1<<56 - 1, 1 << 56, 1<<63 - 1, 1<<64 - 1,
	}

	for _, v := range values {
		buf := Append(nil, v)
		got, err := Read(bytes.NewReader(buf))
		require.NoError(t, err)
		require.Equal(t, v, got, "round trip of %d", v)
	}
}

func TestShortestEncoding(t *testing.T) {
	// Single byte for anything below 0x80.
	require.Len(t, Append(nil, 0), 1)
	require.Len(t, Append(nil, 0x7F), 1)
	// Two bytes from 0x80 up to 1<<14-1.
	require.Len(t, Append(nil, 0x80), 2)
	require.Len(t, Append(nil, 1<<14-1), 2)
	require.Len(t, Append(nil, 1<<14), 3)
	// Maximum value uses the full 9-byte form.
	require.Len(t, Append(nil, 1<<64-1), 9)
}

func TestMaxValueLayout(t *testing.T) {
	buf := Append(nil, 1<<64-1)
	require.Equal(t, byte(0xFF), buf[0])
	require.Len(t, buf, MaxLen)

	got, err := Read(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, uint64(1<<64-1), got)
}
