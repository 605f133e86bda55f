package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"lightbox/internal/filter"
	"lightbox/internal/lightbox"
	"lightbox/internal/media"
	"lightbox/internal/remote"
)

var (
	cfgFile      string
	manifestFile string
	includes     []string
	remoteAddr   string
	allowAll     bool
	sortName     string
	startIndex   int

	filterColor string
	filterOut   string
)

var rootCmd = &cobra.Command{
	Use:   "lightbox [paths...]",
	Short: "Fullscreen gallery viewer for images, videos and text",
	Long: `lightbox shows images, video posters and markdown or text documents as
a gallery with zoom, autoplay, color filters and swipe navigation.

Arguments may be files, directories, archives (zip, rar, 7z), archive
entries as "archive.zip:path/in/archive.jpg", http(s) URLs and gs://
buckets or objects. A TOML manifest can be given instead with --manifest.`,
	SilenceUsage: true,
	RunE:         runViewer,
}

var filterCmd = &cobra.Command{
	Use:   "filter [paths...]",
	Short: "Write color filtered copies of images",
	Long: `filter applies the green or red channel filter of the viewer to every
image found in the arguments and writes the results as JPEG files named
<name>-<color>.jpg into the output directory.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runFilter,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := loadConfigFromPath(cfgFile)
		data, err := marshalConfig(result.Config)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "# %s (%s)\n", cfgFile, result.Status)
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "# warning: %s\n", w)
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", getConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&includes, "include", nil, "only collect names matching these glob patterns")
	rootCmd.PersistentFlags().StringVar(&sortName, "sort", "", "sort method: natural, simple or entry")

	rootCmd.Flags().StringVarP(&manifestFile, "manifest", "m", "", "TOML gallery manifest")
	rootCmd.Flags().StringVar(&remoteAddr, "remote", "", "listen address of the remote control API, e.g. 127.0.0.1:7777")
	rootCmd.Flags().BoolVar(&allowAll, "allow-all", false, "allow remote control requests from any origin")
	rootCmd.Flags().IntVarP(&startIndex, "start", "s", 0, "slide to open (1-based)")

	filterCmd.Flags().StringVarP(&filterColor, "color", "c", "green", "channel to keep: green or red")
	filterCmd.Flags().StringVarP(&filterOut, "out", "o", ".", "output directory")

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(configCmd)
}

// parseSortMethod maps a --sort value to a sort method
func parseSortMethod(name string) (int, error) {
	switch strings.ToLower(name) {
	case "natural":
		return SortNatural, nil
	case "simple":
		return SortSimple, nil
	case "entry", "entry-order":
		return SortEntryOrder, nil
	default:
		return 0, fmt.Errorf("unknown sort method %q", name)
	}
}

// applyFlags overlays command line flags on the loaded config
func applyFlags(cmd *cobra.Command, cfg *Config) error {
	if sortName != "" {
		method, err := parseSortMethod(sortName)
		if err != nil {
			return err
		}
		cfg.SortMethod = method
	}
	cfg.Include = append(cfg.Include, includes...)
	if cmd.Flags().Changed("remote") {
		cfg.RemoteAddr = remoteAddr
	}
	if allowAll {
		cfg.RemoteAllowAll = true
	}
	return nil
}

func newFetcher(cfg Config, objects media.ObjectStore) *media.Fetcher {
	return media.NewFetcher(media.Options{
		Timeout: time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		TTL:     time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Objects: objects,
	})
}

// galleryFromArgs builds the anchors and group options from a manifest or
// from the collected arguments
func galleryFromArgs(ctx context.Context, cfg Config, fetcher *media.Fetcher, args []string) ([]lightbox.Anchor, lightbox.Options, error) {
	groupOpts := cfg.groupOptions()

	if manifestFile != "" {
		m, err := loadManifest(manifestFile)
		if err != nil {
			return nil, nil, err
		}
		return m.Anchors(), lightbox.Merge(groupOpts, m.GroupOptions()), nil
	}

	if len(args) == 0 {
		return nil, nil, fmt.Errorf("no paths given; pass files, directories or --manifest")
	}
	collector := &Collector{Fetcher: fetcher, SortMethod: cfg.SortMethod, Include: cfg.Include}
	entries, err := collector.Collect(ctx, args)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("no viewable files found")
	}

	anchors := anchorsFromEntries(entries)
	if !cfg.TitleFromFilename {
		for i := range anchors {
			anchors[i].Title = ""
		}
	}
	return anchors, groupOpts, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	if err := InitGraphics(); err != nil {
		return fmt.Errorf("loading fonts: %w", err)
	}

	result := loadConfigFromPath(cfgFile)
	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
	}
	// flags are not written back to the file
	saved := result.Config
	if err := applyFlags(cmd, &result.Config); err != nil {
		return err
	}
	cfg := result.Config

	gcs := &media.GCS{}
	defer gcs.Close()
	fetcher := newFetcher(cfg, gcs)

	anchors, groupOpts, err := galleryFromArgs(cmd.Context(), cfg, fetcher, args)
	if err != nil {
		return err
	}
	debugLog("Opening %d slides", len(anchors))

	g := NewGame(result, cfgFile, fetcher)
	defer g.Stop()

	ebiten.SetWindowTitle(fmt.Sprintf("lightbox (%d)", len(anchors)))
	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.Open(anchors, lightbox.Group{
		Options: groupOpts,
		OnChange: func(index int, _ lightbox.Options) {
			debugLog("Slide %d/%d", index, len(anchors))
		},
	}, startIndex)
	if cfg.Fullscreen {
		g.ToggleFullscreen()
	}

	if cfg.RemoteAddr != "" {
		srv := remote.New(remote.Config{Addr: cfg.RemoteAddr, AllowAll: cfg.RemoteAllowAll}, g)
		g.remote = srv
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("Error: Remote control server: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("Warning: Remote control shutdown: %v", err)
			}
		}()
	}

	if err := ebiten.RunGame(g); err != nil {
		return err
	}

	if w, h := g.WindowSize(); w > 0 && h > 0 && result.Status != "Error" {
		saved.WindowWidth, saved.WindowHeight = w, h
		saveConfigToPath(saved, cfgFile)
	}
	return nil
}

// filterOutputPath returns the output file for src
func filterOutputPath(dir, src string, color filter.Color) string {
	name := filepath.Base(src)
	if ref, err := media.ParseRef(src); err == nil && ref.Name() != "" {
		name = ref.Name()
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return uniquePath(filepath.Join(dir, fmt.Sprintf("%s-%s.jpg", name, color)))
}

func runFilter(cmd *cobra.Command, args []string) error {
	color, err := filter.ParseColor(filterColor)
	if err != nil {
		return err
	}

	result := loadConfigFromPath(cfgFile)
	if err := applyFlags(cmd, &result.Config); err != nil {
		return err
	}
	cfg := result.Config

	gcs := &media.GCS{}
	defer gcs.Close()
	fetcher := newFetcher(cfg, gcs)

	collector := &Collector{Fetcher: fetcher, SortMethod: cfg.SortMethod, Include: cfg.Include}
	entries, err := collector.Collect(cmd.Context(), args)
	if err != nil {
		return err
	}
	var images []Entry
	for _, e := range entries {
		if e.Kind == lightbox.KindImage {
			images = append(images, e)
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found")
	}
	if err := os.MkdirAll(filterOut, 0755); err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Filtering"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	worker := filter.NewWorker(1, true)
	defer worker.Stop()

	failed := 0
	for _, e := range images {
		if err := filterOne(cmd.Context(), fetcher, worker, e.Src, color); err != nil {
			log.Printf("Warning: %v", err)
			failed++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	fmt.Printf("Filtered %d of %d images into %s\n", len(images)-failed, len(images), filterOut)
	if failed > 0 {
		return fmt.Errorf("%d images failed", failed)
	}
	return nil
}

// filterOne loads src and runs it through worker, which encodes the
// result
func filterOne(ctx context.Context, fetcher *media.Fetcher, worker *filter.Worker, src string, color filter.Color) error {
	img, err := fetcher.Load(ctx, src)
	if err != nil {
		return err
	}

	results := make(chan filter.Result, 1)
	if !worker.Submit(filter.Request{Image: img, Color: color}, func(r filter.Result) { results <- r }) {
		return fmt.Errorf("%s: filter worker busy", src)
	}
	var res filter.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return fmt.Errorf("%s: %w", src, res.Err)
	}

	out := filterOutputPath(filterOut, src, color)
	if err := os.WriteFile(out, res.JPEG, 0644); err != nil {
		return err
	}
	debugLog("Wrote %s", out)
	return nil
}
