package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"lightbox/internal/lightbox"
	"lightbox/internal/media"
)

// Entry is one source found on the command line
type Entry struct {
	Src  string // file path, archive:entry, url or gs:// object
	Kind lightbox.Kind
}

// entryKind classifies a source by extension. Text files become node
// slides rendered as cards.
func entryKind(name string) (lightbox.Kind, bool) {
	switch {
	case media.IsImage(name):
		return lightbox.KindImage, true
	case media.IsVideo(name):
		return lightbox.KindVideo, true
	case media.IsText(name):
		return lightbox.KindNode, true
	default:
		return lightbox.KindImage, false
	}
}

// Collector expands command line arguments into gallery entries
type Collector struct {
	Fetcher    *media.Fetcher
	SortMethod int
	Include    []string // doublestar patterns; empty accepts everything
}

// accept reports whether name passes the include patterns. Patterns are
// matched against the full name and its base name.
func (c *Collector) accept(name string) bool {
	if len(c.Include) == 0 {
		return true
	}
	normalized := filepath.ToSlash(name)
	for _, pattern := range c.Include {
		if ok, err := doublestar.PathMatch(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(pattern, filepath.Base(normalized)); err == nil && ok {
			return true
		}
	}
	return false
}

func (c *Collector) keep(name string) bool {
	_, ok := entryKind(name)
	return ok && c.accept(name)
}

func (c *Collector) sort(list []Entry) []Entry {
	return GetSortStrategy(c.SortMethod).Sort(list)
}

func (c *Collector) toEntries(srcs []string) []Entry {
	list := make([]Entry, 0, len(srcs))
	for _, src := range srcs {
		ref, err := media.ParseRef(src)
		if err != nil {
			continue
		}
		kind, _ := entryKind(ref.Name())
		list = append(list, Entry{Src: src, Kind: kind})
	}
	return list
}

// Collect walks args in order. Directories are searched recursively and
// sorted, archives are expanded in place, "gs://bucket/prefix/" lists the
// objects under the prefix. Broken archives are skipped with a warning.
func (c *Collector) Collect(ctx context.Context, args []string) ([]Entry, error) {
	var list []Entry
	for _, arg := range args {
		if strings.HasPrefix(arg, "gs://") {
			entries, err := c.collectObjects(ctx, arg)
			if err != nil {
				return nil, err
			}
			list = append(list, entries...)
			continue
		}

		ref, err := media.ParseRef(arg)
		if err != nil {
			return nil, err
		}

		switch ref.Scheme {
		case media.SchemeHTTP:
			kind, _ := entryKind(ref.Name())
			list = append(list, Entry{Src: arg, Kind: kind})
		case media.SchemeArchive:
			kind, _ := entryKind(ref.Path)
			list = append(list, Entry{Src: arg, Kind: kind})
		default:
			entries, err := c.collectPath(arg)
			if err != nil {
				return nil, err
			}
			list = append(list, entries...)
		}
	}
	debugLog("Collected %d entries from %d arguments", len(list), len(args))
	return list, nil
}

// collectObjects treats an object with a known extension as a single
// entry and anything else as a prefix to list
func (c *Collector) collectObjects(ctx context.Context, arg string) ([]Entry, error) {
	if ref, err := media.ParseRef(arg); err == nil {
		if kind, ok := entryKind(ref.Path); ok {
			return []Entry{{Src: arg, Kind: kind}}, nil
		}
	}
	if c.Fetcher == nil {
		return nil, fmt.Errorf("listing %s: no fetcher", arg)
	}
	srcs, err := c.Fetcher.ListObjects(ctx, arg, c.keep)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", arg, err)
	}
	return c.sort(c.toEntries(srcs)), nil
}

func (c *Collector) collectPath(p string) ([]Entry, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return c.collectFile(p, true), nil
	}

	var list []Entry
	err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		list = append(list, c.collectFile(path, false)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.sort(list), nil
}

// collectFile returns the entries of a single file. Files named explicitly
// bypass the include patterns.
func (c *Collector) collectFile(path string, explicit bool) []Entry {
	if media.IsArchive(path) {
		srcs, err := media.ListArchive(path, c.keep)
		if err != nil {
			log.Printf("Warning: Skipping problematic archive %s: %v", path, err)
			return nil
		}
		return c.sort(c.toEntries(srcs))
	}

	kind, ok := entryKind(path)
	if !ok || (!explicit && !c.accept(path)) {
		return nil
	}
	return []Entry{{Src: path, Kind: kind}}
}

// anchorsFromEntries turns entries into gallery anchors
func anchorsFromEntries(list []Entry) []lightbox.Anchor {
	anchors := make([]lightbox.Anchor, 0, len(list))
	for _, e := range list {
		title := e.Src
		if ref, err := media.ParseRef(e.Src); err == nil {
			title = ref.Name()
		}
		anchors = append(anchors, lightbox.Anchor{
			Href:  e.Src,
			Title: title,
			Data:  lightbox.Options{"media": e.Kind.String()},
		})
	}
	return anchors
}
