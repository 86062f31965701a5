// Package fsutil is filesystem glue for the writer's source-path helpers:
// walking a directory tree into FileEntry/reader pairs, and extracting a
// decoded entry back out to disk. This sits outside the core engine — the
// core only needs the FileEntry/io.Reader interface callers hand it — but
// it's small enough to ship as ready-made glue.
package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go7z/sevenz/archive"
)

// winAttributeDirectory and winAttributeReadonly mirror the Windows
// FILE_ATTRIBUTE_* bits the format stores in FileEntry.Attributes.
const (
	winAttributeReadonly  = 0x01
	winAttributeDirectory = 0x10
	unixExtensionFlag     = 0x8000
)

// Walked is one filesystem entry collected by Walk: the FileEntry ready to
// push, and (for regular files) a function that opens its content on
// demand, so a caller can defer opening file descriptors until the entry is
// actually about to be compressed.
type Walked struct {
	Entry archive.FileEntry
	Open  func() (io.ReadCloser, error)
}

// Filter decides whether path (relative to the walked root) is included.
type Filter func(path string, info fs.FileInfo) bool

// Walk collects root's tree into Walked records, in a deterministic
// (lexical, directories-before-their-children) order, with names relative
// to root using forward slashes regardless of platform.
func Walk(root string, filter Filter) ([]Walked, error) {
	var out []Walked

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == root {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)

		if filter != nil && !filter(rel, info) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		entry := archive.FileEntry{
			Name:           rel,
			IsDir:          d.IsDir(),
			Size:           uint64(info.Size()),
			ModifiedTime:   info.ModTime(),
			HasModTime:     true,
			Attributes:     attributesFor(info),
			HasAttribs:     true,
		}

		if d.IsDir() {
			out = append(out, Walked{Entry: entry})

			return nil
		}

		p := path
		out = append(out, Walked{
			Entry: entry,
			Open:  func() (io.ReadCloser, error) { return os.Open(p) },
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.Name < out[j].Entry.Name })

	return out, nil
}

func attributesFor(info fs.FileInfo) uint32 {
	var winAttr uint32

	if info.IsDir() {
		winAttr |= winAttributeDirectory
	}

	if info.Mode()&0o222 == 0 {
		winAttr |= winAttributeReadonly
	}

	mode := uint32(info.Mode().Perm())
	if info.IsDir() {
		mode |= 0o040000
	} else {
		mode |= 0o100000
	}

	return winAttr | unixExtensionFlag | (mode << 16)
}

// DefaultExtract creates parent directories, streams r into destPath, then
// restores the modification time entry declares. It does nothing for
// directories beyond creating destPath itself.
func DefaultExtract(entry *archive.FileEntry, r io.Reader, destPath string) error {
	if entry.IsDir {
		return os.MkdirAll(destPath, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if entry.HasModTime {
		return os.Chtimes(destPath, time.Now(), entry.ModifiedTime)
	}

	return nil
}
