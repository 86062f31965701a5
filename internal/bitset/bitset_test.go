package bitset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpack(t *testing.T) {
	bits := []bool{true, false, true, true, false, false, false, true, true}
	packed := Pack(bits)
	require.Equal(t, ByteLen(len(bits)), len(packed))

	unpacked := Unpack(packed, len(bits))
	require.Equal(t, bits, unpacked)
}

func TestReadWrite(t *testing.T) {
	bits := []bool{true, true, false, true, false}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, bits))
	require.Equal(t, ByteLen(len(bits)), buf.Len())

	got, err := Read(&buf, len(bits))
	require.NoError(t, err)
	require.Equal(t, bits, got)
}

func TestAllTrue(t *testing.T) {
	require.True(t, AllTrue([]bool{true, true, true}))
	require.False(t, AllTrue([]bool{true, false, true}))
	require.True(t, AllTrue(nil))
}
