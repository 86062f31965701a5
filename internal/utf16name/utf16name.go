// Package utf16name encodes and decodes 7z entry names: UTF-16LE code unit
// sequences terminated by a trailing NUL code unit, forward-slash separated.
package utf16name

import (
	"unicode/utf16"

	"github.com/go7z/sevenz/errs"
)

// Encode converts name to UTF-16LE code units with a trailing NUL unit.
// name must not contain a NUL rune.
func Encode(name string) ([]byte, error) {
	for _, r := range name {
		if r == 0 {
			return nil, errs.ErrInvalidArgument
		}
	}

	units := utf16.Encode([]rune(name))
	out := make([]byte, 0, (len(units)+1)*2)

	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}

	return append(out, 0, 0), nil
}

// Decode reads a NUL-terminated UTF-16LE name starting at data[0], returning
// the decoded string and the number of bytes consumed including the
// terminator.
func Decode(data []byte) (string, int, error) {
	units := make([]uint16, 0, len(data)/2)

	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		if u == 0 {
			return string(utf16.Decode(units)), i + 2, nil
		}

		units = append(units, u)
	}

	return "", 0, errs.NewMalformedHeader(int64(len(data)), "unterminated name")
}

// ByteLen returns the number of bytes Encode(name) will produce.
func ByteLen(name string) int {
	return (len(utf16.Encode([]rune(name))) + 1) * 2
}
