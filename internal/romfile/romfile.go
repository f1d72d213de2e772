// Package romfile loads ROM images from disk, transparently decompressing
// the archive formats ROMs are commonly distributed in.
package romfile

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
)

// ErrEmptyArchive indicates the archive contains no ROM image.
var ErrEmptyArchive = errors.New("archive contains no ROM image")

// isROMName reports whether a file name looks like a ROM image.
func isROMName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gb", ".gbc", ".bin", ".rom":
		return true
	default:
		return false
	}
}

// Load reads a ROM image from path. Flat images are returned as-is;
// .zip, .7z and .gz files are decompressed and the first ROM-looking entry
// is returned.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return loadZip(f)
	case ".7z":
		return load7z(f)
	case ".gz":
		return loadGzip(f)
	default:
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, nil
	}
}

func loadZip(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}

	for _, entry := range r.File {
		if !isROMName(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q in archive: %w", entry.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q from archive: %w", entry.Name, err)
		}
		return data, nil
	}
	return nil, ErrEmptyArchive
}

func load7z(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	r, err := sevenzip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}

	for _, entry := range r.File {
		if !isROMName(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q in archive: %w", entry.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q from archive: %w", entry.Name, err)
		}
		return data, nil
	}
	return nil, ErrEmptyArchive
}

func loadGzip(f *os.File) ([]byte, error) {
	r, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gzip stream: %w", err)
	}
	return data, nil
}

// Fingerprint returns a stable 64-bit identity for a ROM image, used to key
// save files and sanity-check them against the ROM they were written for.
func Fingerprint(rom []byte) uint64 {
	return xxhash.Sum64(rom)
}
