// Package archive reads input documents packed into zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxEntrySize limits size of a single document read from archive.
const MaxEntrySize = 16 << 20

// Entry is a regular file inside archive.
type Entry struct {
	Archive string // path to archive passed to Walk
	Name    string // slash separated name inside archive
	file    *zip.File
}

// Read returns uncompressed content of the entry. It may only be called
// from inside WalkFunc while archive is open.
func (e Entry) Read() ([]byte, error) {
	if e.file.UncompressedSize64 > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q is too large (%d bytes)", e.Name, e.file.UncompressedSize64)
	}
	r, err := e.file.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read zip entry %q: %w", e.Name, err)
	}
	if len(data) > MaxEntrySize {
		return nil, fmt.Errorf("zip entry %q is too large", e.Name)
	}
	return data, nil
}

// WalkFunc is called for each entry visited by Walk. If an error is returned,
// processing stops.
type WalkFunc func(e Entry) error

// Walk visits regular files with names starting with prefix and accepted by
// match (nil match accepts everything), in archive order. Archives with
// absolute entry names or names containing ".." are refused to prevent
// Zip Slip attacks.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if err := walkFn(Entry{Archive: archive, Name: name, file: f}); err != nil {
			return err
		}
	}
	return nil
}

// IsArchive reports whether file name looks like a zip archive.
func IsArchive(name string) bool {
	return strings.EqualFold(path.Ext(name), ".zip")
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
