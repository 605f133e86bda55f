package media

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"
)

// ListArchive returns the sources of the entries of archive accepted by
// keep, in archive order.
func ListArchive(archive string, keep func(name string) bool) ([]string, error) {
	var names []string
	var err error

	switch strings.ToLower(filepath.Ext(archive)) {
	case ".zip", ".cbz":
		names, err = listZip(archive)
	case ".rar", ".cbr":
		names, err = listRar(archive)
	case ".7z":
		names, err = list7z(archive)
	default:
		return nil, fmt.Errorf("archive %s: %w", archive, ErrUnsupportedSource)
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", archive, err)
	}

	var list []string
	for _, name := range names {
		if keep == nil || keep(name) {
			list = append(list, EntryRef(archive, name))
		}
	}
	return list, nil
}

func listZip(archive string) ([]string, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

func listRar(archive string) ([]string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, err
		}
		if !header.IsDir {
			names = append(names, header.Name)
		}
	}
}

func list7z(archive string) ([]string, error) {
	r, err := sevenzip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// readEntry returns the bytes of one archive entry
func readEntry(archive, entry string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(archive)) {
	case ".zip", ".cbz":
		return readZipEntry(archive, entry)
	case ".rar", ".cbr":
		return readRarEntry(archive, entry)
	case ".7z":
		return read7zEntry(archive, entry)
	default:
		return nil, fmt.Errorf("archive %s: %w", archive, ErrUnsupportedSource)
	}
}

func readZipEntry(archive, entry string) ([]byte, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entry, archive)
}

func readRarEntry(archive, entry string) ([]byte, error) {
	f, err := os.Open(archive)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entry {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entry, archive)
}

func read7zEntry(archive, entry string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entry, archive)
}
