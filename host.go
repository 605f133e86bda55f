package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"lightbox/internal/lightbox"
	"lightbox/internal/media"
)

const downloadTimeout = time.Minute

// fileDownloader copies the source of a slide into a directory
type fileDownloader struct {
	dir     string
	fetcher *media.Fetcher
}

// Download implements lightbox.Downloader. An existing file of the same
// name gets a numeric suffix.
func (d *fileDownloader) Download(src string) error {
	ref, err := media.ParseRef(src)
	if err != nil {
		return err
	}
	name := ref.Name()
	if name == "" {
		name = "download"
	}

	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	data, err := d.fetcher.Fetch(ctx, src)
	if err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}
	path := uniquePath(filepath.Join(d.dir, name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}
	debugLog("Downloaded %s to %s", src, path)
	return nil
}

func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// browserOpener opens footer button links with the desktop handler
type browserOpener struct{}

func (browserOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	go cmd.Wait()
	return nil
}

// windowFullscreen toggles the ebiten window and restores the windowed
// size on exit
type windowFullscreen struct {
	savedW, savedH int
}

func (f *windowFullscreen) request() error {
	if !ebiten.IsFullscreen() {
		f.savedW, f.savedH = ebiten.WindowSize()
		ebiten.SetFullscreen(true)
	}
	return nil
}

func (f *windowFullscreen) exit() error {
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if f.savedW > 0 && f.savedH > 0 {
			ebiten.SetWindowSize(f.savedW, f.savedH)
		}
	}
	return nil
}

// fullscreenProbes lists the fullscreen implementations in preference
// order. Browsers have no window to resize.
func fullscreenProbes() []lightbox.FullscreenProbe {
	w := &windowFullscreen{}
	return []lightbox.FullscreenProbe{
		{
			Name:      "window",
			Available: func() bool { return runtime.GOOS != "js" },
			Request:   w.request,
			Exit:      w.exit,
			IsActive:  ebiten.IsFullscreen,
		},
	}
}
