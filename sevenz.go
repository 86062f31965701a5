// Package sevenz is the top-level facade over the 7z archive engine: Open
// an existing archive for reading, or Create a new one for writing.
package sevenz

import (
	"io"
	"os"

	"github.com/go7z/sevenz/internal/options"
	"github.com/go7z/sevenz/reader"
	"github.com/go7z/sevenz/writer"
)

// OpenOption configures Open/OpenReaderAt.
type OpenOption = options.Option[*openConfig]

type openConfig struct {
	password []byte
}

// WithPassword supplies the password used to decrypt encrypted blocks (and,
// if present, an encrypted header) on demand.
func WithPassword(password string) OpenOption {
	return options.NoError[*openConfig](func(c *openConfig) {
		c.password = []byte(password)
	})
}

// Open opens the 7z archive at path for reading.
func Open(path string, opts ...OpenOption) (*reader.Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, err
	}

	a, err := OpenReaderAt(f, info.Size(), opts...)
	if err != nil {
		f.Close()

		return nil, err
	}

	return a, nil
}

// OpenReaderAt opens a 7z archive already available as a ReaderAt (size
// bytes long), for callers that don't have (or don't want) a plain file
// path — an in-memory buffer, a network-backed range reader, and so on.
func OpenReaderAt(ra io.ReaderAt, size int64, opts ...OpenOption) (*reader.Archive, error) {
	cfg := &openConfig{}
	if err := options.Apply[*openConfig](cfg, opts...); err != nil {
		return nil, err
	}

	return reader.Open(ra, size, cfg.password)
}

// Create returns a new archive writer that serializes to sink on Finish.
func Create(sink io.Writer) *writer.ArchiveWriter {
	return writer.New(sink)
}
