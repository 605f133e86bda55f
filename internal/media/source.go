// Package media resolves slide sources to bytes and decoded images.
//
// A source is one of:
//
//	photo.jpg                 local file
//	book.cbz:page01.png       entry of a zip, rar or 7z archive
//	https://host/photo.jpg    http(s) url, cached for a while
//	gs://bucket/photo.jpg     Google Cloud Storage object
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedSource is returned for sources no backend can read
var ErrUnsupportedSource = errors.New("unsupported source")

// Scheme identifies the backend of a Ref
type Scheme int

const (
	SchemeFile Scheme = iota
	SchemeArchive
	SchemeHTTP
	SchemeGCS
)

func (s Scheme) String() string {
	switch s {
	case SchemeArchive:
		return "archive"
	case SchemeHTTP:
		return "http"
	case SchemeGCS:
		return "gs"
	default:
		return "file"
	}
}

// Ref is a parsed source
type Ref struct {
	Scheme  Scheme
	Path    string // file path, url or object name
	Archive string // archive path for SchemeArchive
	Bucket  string // bucket for SchemeGCS
}

// String returns the source spelling of r
func (r Ref) String() string {
	switch r.Scheme {
	case SchemeArchive:
		return r.Archive + ":" + r.Path
	case SchemeGCS:
		return "gs://" + r.Bucket + "/" + r.Path
	default:
		return r.Path
	}
}

// Name returns the base name used for format detection and titles
func (r Ref) Name() string {
	name := r.Path
	if r.Scheme == SchemeHTTP {
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// ParseRef classifies src. Archive entries use the "archive:entry" form
// where archive ends in a known archive extension.
func ParseRef(src string) (Ref, error) {
	switch {
	case src == "":
		return Ref{}, fmt.Errorf("empty source: %w", ErrUnsupportedSource)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return Ref{Scheme: SchemeHTTP, Path: src}, nil
	case strings.HasPrefix(src, "gs://"):
		rest := strings.TrimPrefix(src, "gs://")
		bucket, object, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || object == "" {
			return Ref{}, fmt.Errorf("malformed object %q: %w", src, ErrUnsupportedSource)
		}
		return Ref{Scheme: SchemeGCS, Bucket: bucket, Path: object}, nil
	case strings.Contains(src, "://"):
		return Ref{}, fmt.Errorf("%s: %w", src, ErrUnsupportedSource)
	}

	// a drive letter is not an archive separator
	for i := 0; i < len(src); i++ {
		if src[i] != ':' || i < 2 {
			continue
		}
		if archive := src[:i]; IsArchive(archive) && i+1 < len(src) {
			return Ref{Scheme: SchemeArchive, Archive: archive, Path: src[i+1:]}, nil
		}
	}
	return Ref{Scheme: SchemeFile, Path: src}, nil
}

// EntryRef builds the source of an archive entry
func EntryRef(archive, entry string) string {
	return archive + ":" + entry
}

// IsArchive reports whether path has a supported archive extension
func IsArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".cbz", ".rar", ".cbr", ".7z":
		return true
	default:
		return false
	}
}

// IsImage reports whether path has a decodable image extension
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif":
		return true
	default:
		return false
	}
}

// IsVideo reports whether path looks like a video file
func IsVideo(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".webm", ".mov", ".avi":
		return true
	default:
		return false
	}
}

// IsText reports whether path is a text card source
func IsText(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return true
	default:
		return false
	}
}
