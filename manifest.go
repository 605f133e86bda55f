package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"lightbox/internal/lightbox"
	"lightbox/internal/media"
)

// Manifest describes a curated gallery:
//
//	[group]
//	autoslide = true
//	theme = "white"
//
//	[[slide]]
//	href = "intro.md"
//	title = "Introduction"
//	data = { media = "node" }
type Manifest struct {
	Group  map[string]any  `toml:"group"`
	Slides []ManifestSlide `toml:"slide"`
}

// ManifestSlide is one [[slide]] entry
type ManifestSlide struct {
	Href  string         `toml:"href"`
	Title string         `toml:"title"`
	Alt   string         `toml:"alt"`
	Data  map[string]any `toml:"data"`
}

// loadManifest reads a manifest. Relative hrefs and src options are
// resolved against the manifest directory.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Slides) == 0 {
		return nil, fmt.Errorf("manifest %s has no slides", path)
	}

	dir := filepath.Dir(path)
	for i := range m.Slides {
		s := &m.Slides[i]
		if s.Href == "" {
			return nil, fmt.Errorf("manifest %s: slide %d has no href", path, i+1)
		}
		s.Href = resolveSource(dir, s.Href)
		for k, v := range s.Data {
			if str, ok := v.(string); ok && (k == "src" || k == "poster" || strings.HasPrefix(k, "src-")) {
				s.Data[k] = resolveSource(dir, str)
			}
		}
	}
	return &m, nil
}

// resolveSource makes a local relative source absolute to dir. Remote
// sources are left alone.
func resolveSource(dir, src string) string {
	ref, err := media.ParseRef(src)
	if err != nil || filepath.IsAbs(src) {
		return src
	}
	switch ref.Scheme {
	case media.SchemeFile, media.SchemeArchive:
		return filepath.Join(dir, src)
	default:
		return src
	}
}

// Anchors converts the slides to gallery anchors. The media kind is
// guessed from the extension unless the slide sets it.
func (m *Manifest) Anchors() []lightbox.Anchor {
	anchors := make([]lightbox.Anchor, 0, len(m.Slides))
	for _, s := range m.Slides {
		opts := stringifyOptions(s.Data)
		if _, ok := opts["media"]; !ok {
			if kind, ok := entryKind(s.Href); ok {
				opts["media"] = kind.String()
			}
		}
		anchors = append(anchors, lightbox.Anchor{
			Href:  s.Href,
			Title: s.Title,
			Alt:   s.Alt,
			Data:  opts,
		})
	}
	return anchors
}

// GroupOptions returns the [group] table as lightbox options
func (m *Manifest) GroupOptions() lightbox.Options {
	return stringifyOptions(m.Group)
}
