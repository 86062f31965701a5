package writer

import (
	"io"

	"github.com/go7z/sevenz/archive"
	"github.com/go7z/sevenz/internal/fsutil"
)

// PushSourcePath walks root and pushes its files as one solid block.
// Directories and zero-byte files are appended without a block, same as
// PushArchiveEntries.
func (w *ArchiveWriter) PushSourcePath(root string, filter fsutil.Filter) error {
	walked, err := fsutil.Walk(root, filter)
	if err != nil {
		return err
	}

	return w.pushWalked(walked, w.PushArchiveEntries)
}

// PushSourcePathNonSolid walks root and pushes each file as its own block.
func (w *ArchiveWriter) PushSourcePathNonSolid(root string, filter fsutil.Filter) error {
	walked, err := fsutil.Walk(root, filter)
	if err != nil {
		return err
	}

	for _, item := range walked {
		var r io.ReadCloser

		if item.Open != nil {
			var err error

			r, err = item.Open()
			if err != nil {
				return err
			}
		}

		if err := w.pushOne(item.Entry, r); err != nil {
			return err
		}
	}

	return nil
}

func (w *ArchiveWriter) pushOne(entry archive.FileEntry, r io.ReadCloser) error {
	if r == nil {
		return w.PushArchiveEntry(entry, nil)
	}
	defer r.Close()

	return w.PushArchiveEntry(entry, r)
}

// pushWalked opens every non-empty file's reader up front and hands the
// whole batch to push, closing each reader once push returns. Directories
// and zero-byte files get a nil reader.
func (w *ArchiveWriter) pushWalked(walked []fsutil.Walked, push func([]archive.FileEntry, []io.Reader) error) error {
	entries := make([]archive.FileEntry, len(walked))
	readers := make([]io.Reader, len(walked))
	closers := make([]io.Closer, 0, len(walked))

	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for i, item := range walked {
		entries[i] = item.Entry

		if item.Open == nil || item.Entry.Size == 0 {
			continue
		}

		r, err := item.Open()
		if err != nil {
			return err
		}

		readers[i] = r
		closers = append(closers, r)
	}

	return push(entries, readers)
}
