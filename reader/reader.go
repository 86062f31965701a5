// Package reader implements the 7z read path: opening an archive, decoding
// one block at a time into per-file sub-readers with CRC enforcement, and
// a convenience whole-file read.
package reader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/errs"
	"github.com/go7z/sevenz/header"
	"github.com/go7z/sevenz/pipeline"
)

// Archive is an opened 7z archive: the parsed model plus the source it was
// read from, ready to decode blocks on demand.
type Archive struct {
	model    *archive.Archive
	source   io.ReaderAt
	password []byte
}

// Open parses ra (size bytes long) as a 7z archive. password may be nil;
// it is only consulted when an encrypted block is actually decoded.
func Open(ra io.ReaderAt, size int64, password []byte) (*Archive, error) {
	m, err := header.Decode(ra, size, password)
	if err != nil {
		return nil, err
	}

	return &Archive{model: m, source: ra, password: password}, nil
}

// Model returns the parsed archive model, read-only from the caller's
// perspective.
func (a *Archive) Model() *archive.Archive {
	return a.model
}

// Close releases the underlying source, if it implements io.Closer (as the
// *os.File behind sevenz.Open does). It is a no-op otherwise.
func (a *Archive) Close() error {
	if c, ok := a.source.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// Files returns the archive's file table.
func (a *Archive) Files() []archive.FileEntry {
	return a.model.Files
}

// ReadFile decodes and returns the full uncompressed contents of the named
// file. It fails with errs.ErrFileNotFound if no entry matches.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	entry, idx, ok := a.model.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrFileNotFound, name)
	}

	if !entry.HasStream {
		return nil, nil
	}

	dec, err := NewBlockDecoder(a, entry.BlockIndex)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out bytes.Buffer

	for fi, r := range dec.All() {
		if fi != &a.model.Files[idx] {
			if _, err := pipeline.CopyBuffer(io.Discard, r); err != nil {
				return nil, err
			}

			continue
		}

		if _, err := pipeline.CopyBuffer(&out, r); err != nil {
			return nil, err
		}

		return out.Bytes(), nil
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrFileNotFound, name)
}
