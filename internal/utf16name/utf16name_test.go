package utf16name

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"", "file.txt", "dir/sub/file.txt", "héllo.7z", "日本語.txt"} {
		enc, err := Encode(name)
		require.NoError(t, err)
		require.Equal(t, ByteLen(name), len(enc))

		got, n, err := Decode(enc)
		require.NoError(t, err)
		require.Equal(t, len(enc), n)
		require.Equal(t, name, got)
	}
}

func TestEncodeRejectsNUL(t *testing.T) {
	_, err := Encode("bad\x00name")
	require.Error(t, err)
}

func TestDecodeUnterminated(t *testing.T) {
	_, _, err := Decode([]byte{'a', 0, 'b', 0})
	require.Error(t, err)
}
