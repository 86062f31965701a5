// Package header implements the 7z header grammar: the signature header,
// the tagged-NID StreamsInfo/FilesInfo sections, and the encoded-header
// recursion. Parsing always happens against a whole in-memory buffer (via
// cursor); an encoded header is first fully decoded through the pipeline
// package, then parsed exactly like a plain one.
package header

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/crc"
	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/pipeline"
)

// SignatureSize is the fixed length, in bytes, of the 7z signature header.
const SignatureSize = 32

// FormatMajor and FormatMinor are the version this engine writes. Reading
// requires FormatMajor and accepts any minor version.
const (
	FormatMajor = 0
	FormatMinor = 4
)

// Decode reads the signature header and start header from ra (a file of
// size bytes), decoding an EncodedHeader if present, and returns the parsed
// archive model with Archive.Build already applied.
func Decode(ra io.ReaderAt, size int64, password []byte) (*archive.Archive, error) {
	var sig [SignatureSize]byte
	if _, err := ra.ReadAt(sig[:], 0); err != nil {
		return nil, errs.ErrBadSignature
	}

	if !bytes.Equal(sig[:6], signature[:]) {
		return nil, errs.ErrBadSignature
	}

	if sig[6] != FormatMajor {
		return nil, errs.ErrUnsupportedVersion
	}

	wantCRC := binary.LittleEndian.Uint32(sig[8:12])
	gotCRC := crc.Of(sig[12:32])

	if wantCRC != gotCRC {
		return nil, errs.NewChecksumMismatch(errs.ScopeHeader, "start-header", wantCRC, gotCRC)
	}

	startOffset := binary.LittleEndian.Uint64(sig[12:20])
	startSize := binary.LittleEndian.Uint64(sig[20:28])
	startCRC := binary.LittleEndian.Uint32(sig[28:32])

	a := &archive.Archive{HeaderPos: SignatureSize + int64(startOffset)}

	if startSize == 0 {
		a.Build()

		return a, nil
	}

	buf := make([]byte, startSize)
	if _, err := ra.ReadAt(buf, a.HeaderPos); err != nil {
		return nil, errs.NewMalformedHeader(a.HeaderPos, "truncated start header")
	}

	if got := crc.Of(buf); got != startCRC {
		return nil, errs.NewChecksumMismatch(errs.ScopeHeader, "start-header", startCRC, got)
	}

	if err := decodeTopLevel(ra, size, buf, a.HeaderPos, password, a, 0); err != nil {
		return nil, err
	}

	a.Build()

	return a, nil
}

// decodeTopLevel parses one level of Header-or-EncodedHeader, recursing at
// most once (depth tracks recursion: the decoded body of an EncodedHeader
// must itself be a plain Header).
func decodeTopLevel(ra io.ReaderAt, size int64, buf []byte, origin int64, password []byte, a *archive.Archive, depth int) error {
	if depth > 1 {
		return errs.NewMalformedHeader(origin, "encoded header recursion too deep")
	}

	c := newCursor(buf, origin)

	id, err := c.id()
	if err != nil {
		return err
	}

	switch id {
	case idHeader:
		return readHeaderBody(c, a)
	case idEncodedHeader:
		plain, err := decodeEncodedHeader(c, ra, password)
		if err != nil {
			return err
		}

		return decodeTopLevel(ra, size, plain, origin, password, a, depth+1)
	default:
		return c.fail("expected Header or EncodedHeader id")
	}
}

// decodeEncodedHeader parses the embedded StreamsInfo describing the
// header's own block, decodes that block in full, and returns its plain
// bytes.
func decodeEncodedHeader(c *cursor, ra io.ReaderAt, password []byte) ([]byte, error) {
	var tmp archive.Archive

	if err := readStreamsInfo(c, &tmp); err != nil {
		return nil, err
	}

	if len(tmp.Blocks) != 1 {
		return nil, c.fail("EncodedHeader must describe exactly one block")
	}

	tmp.Build()

	params := pipeline.BlockDecodeParams{
		ReaderAt:          ra,
		ArchiveAreaStart:  SignatureSize + int64(tmp.Pack.Base),
		BlockOffset:       tmp.Stream.BlockOffset[0],
		Pack:              tmp.Pack,
		FirstPackedStream: tmp.Stream.FirstPackedStream[0],
		Password:          password,
	}

	rc, err := pipeline.NewBlockDecoder(params, &tmp.Blocks[0])
	if err != nil {
		return nil, err
	}

	defer rc.Close()

	plain := make([]byte, tmp.Blocks[0].UnpackSize())
	if _, err := io.ReadFull(rc, plain); err != nil {
		return nil, errs.ErrUnexpectedEOF
	}

	if tmp.Blocks[0].HasCRC {
		if got := crc.Of(plain); got != tmp.Blocks[0].CRC {
			return nil, errs.NewChecksumMismatch(errs.ScopeHeader, "encoded-header", tmp.Blocks[0].CRC, got)
		}
	}

	return plain, nil
}

// readHeaderBody parses the body following the top-level Header id:
// optional ArchiveProperties, optional (and currently unsupported)
// AdditionalStreamsInfo, optional MainStreamsInfo, optional FilesInfo, End.
func readHeaderBody(c *cursor, a *archive.Archive) error {
	id, err := c.id()
	if err != nil {
		return err
	}

	if id == idArchiveProperties {
		if err := skipTaggedProperties(c); err != nil {
			return err
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	if id == idAdditionalStreamInfo {
		return c.fail("AdditionalStreamsInfo (split/external headers) is not supported")
	}

	if id == idMainStreamsInfo {
		if err := readStreamsInfo(c, a); err != nil {
			return err
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	if id == idFilesInfo {
		if err := readFilesInfo(c, a); err != nil {
			return err
		}

		id, err = c.id()
		if err != nil {
			return err
		}
	}

	if id != idEnd {
		return c.fail("unexpected id at end of Header")
	}

	return nil
}

// skipTaggedProperties consumes a (id, size, payload)* End sequence without
// interpreting the payloads, used for ArchiveProperties, whose contents
// this engine does not need to surface.
func skipTaggedProperties(c *cursor) error {
	for {
		id, err := c.u64()
		if err != nil {
			return err
		}

		if id == idEnd {
			return nil
		}

		size, err := c.u64()
		if err != nil {
			return err
		}

		if _, err := c.bytes(int(size)); err != nil {
			return err
		}
	}
}
