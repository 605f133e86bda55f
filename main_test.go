package main

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"lightbox/internal/filter"
	"lightbox/internal/geometry"
	"lightbox/internal/lightbox"
	"lightbox/internal/media"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name           string
		yaml           string // empty: no file
		expectedStatus string
		expectedWidth  int
		expectedHeight int
		expectedCache  int
		expectedSort   int
	}{
		{
			name:           "Missing file",
			expectedStatus: "Default",
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedCache:  16,
			expectedSort:   SortNatural,
		},
		{
			name: "Valid config",
			yaml: `window_width: 1000
window_height: 800
cache_size: 8
sort_method: 1
`,
			expectedStatus: "OK",
			expectedWidth:  1000,
			expectedHeight: 800,
			expectedCache:  8,
			expectedSort:   SortSimple,
		},
		{
			name: "Values out of range",
			yaml: `window_width: 200
window_height: 100
cache_size: 500
sort_method: 9
`,
			expectedStatus: "OK",
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedCache:  64,
			expectedSort:   SortNatural,
		},
		{
			name:           "Broken YAML",
			yaml:           "window_width: [1000\n",
			expectedStatus: "Error",
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedCache:  16,
			expectedSort:   SortNatural,
		},
		{
			name: "Key conflict",
			yaml: `keybindings:
  next: ["KeyQ"]
`,
			expectedStatus: "Warning",
			expectedWidth:  defaultWidth,
			expectedHeight: defaultHeight,
			expectedCache:  16,
			expectedSort:   SortNatural,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			if tt.yaml != "" {
				writeFile(t, path, tt.yaml)
			}

			result := loadConfigFromPath(path)
			if result.Status != tt.expectedStatus {
				t.Errorf("Status = %s, want %s (warnings: %v)", result.Status, tt.expectedStatus, result.Warnings)
			}
			cfg := result.Config
			if cfg.WindowWidth != tt.expectedWidth || cfg.WindowHeight != tt.expectedHeight {
				t.Errorf("window = %dx%d, want %dx%d", cfg.WindowWidth, cfg.WindowHeight, tt.expectedWidth, tt.expectedHeight)
			}
			if cfg.CacheSize != tt.expectedCache {
				t.Errorf("CacheSize = %d, want %d", cfg.CacheSize, tt.expectedCache)
			}
			if cfg.SortMethod != tt.expectedSort {
				t.Errorf("SortMethod = %d, want %d", cfg.SortMethod, tt.expectedSort)
			}
			if tt.expectedStatus == "Error" && !result.HasError {
				t.Error("HasError should be set")
			}
			if tt.expectedStatus == "Warning" && !reflect.DeepEqual(cfg.Keybindings, GetDefaultKeybindings()) {
				t.Error("conflicting keybindings should fall back to the defaults")
			}
		})
	}
}

func TestLoadConfigMergesBindings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	writeFile(t, path, `keybindings:
  exit: ["KeyX"]
`)

	result := loadConfigFromPath(path)
	if result.Status != "OK" {
		t.Fatalf("Status = %s, warnings %v", result.Status, result.Warnings)
	}
	if got := result.Config.Keybindings["exit"]; !reflect.DeepEqual(got, []string{"KeyX"}) {
		t.Errorf("exit = %v, want [KeyX]", got)
	}
	if got := result.Config.Keybindings["next"]; !reflect.DeepEqual(got, []string{"ArrowRight"}) {
		t.Errorf("missing action should keep its default, got %v", got)
	}
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("LIGHTBOX_CACHE_SIZE", "32")
	t.Setenv("LIGHTBOX_THEME", "white")

	result := loadConfigFromPath(filepath.Join(t.TempDir(), "missing.yml"))
	if result.Config.CacheSize != 32 {
		t.Errorf("CacheSize = %d, want 32", result.Config.CacheSize)
	}
	if result.Config.Theme != "white" {
		t.Errorf("Theme = %q, want white", result.Config.Theme)
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	small := DefaultConfig()
	small.WindowWidth = 100
	saveConfigToPath(small, path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("config with an invalid window size should not be saved")
	}

	cfg := DefaultConfig()
	cfg.WindowWidth, cfg.WindowHeight = 1280, 720
	cfg.Group = map[string]any{"autoslide": true}
	saveConfigToPath(cfg, path)

	result := loadConfigFromPath(path)
	if result.Status != "OK" {
		t.Fatalf("Status = %s, warnings %v", result.Status, result.Warnings)
	}
	if result.Config.WindowWidth != 1280 || result.Config.WindowHeight != 720 {
		t.Errorf("window = %dx%d, want 1280x720", result.Config.WindowWidth, result.Config.WindowHeight)
	}
	if got := result.Config.groupOptions()["autoslide"]; got != "true" {
		t.Errorf("autoslide = %q, want true", got)
	}
}

func TestGroupOptions(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected lightbox.Options
	}{
		{
			name:     "Empty",
			config:   Config{},
			expected: lightbox.Options{},
		},
		{
			name: "Scalars are stringified",
			config: Config{Group: map[string]any{
				"autoslide": true,
				"delay":     3,
				"fit":       "cover",
				"skip":      nil,
			}},
			expected: lightbox.Options{"autoslide": "true", "delay": "3", "fit": "cover"},
		},
		{
			name:     "Theme fallback",
			config:   Config{Theme: "white"},
			expected: lightbox.Options{"theme": "white"},
		},
		{
			name:     "Group theme wins",
			config:   Config{Theme: "white", Group: map[string]any{"theme": "dark"}},
			expected: lightbox.Options{"theme": "dark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.groupOptions(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("groupOptions() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidateKeyString(t *testing.T) {
	keys := getKeyMapping()
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"KeyA", false},
		{"Shift+KeyB", false},
		{"Ctrl+Alt+ArrowLeft", false},
		{"shift+Equal", false},
		{"", true},
		{"Shift+", true},
		{"Hyper+KeyA", true},
		{"KeyNope", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := validateKeyString(tt.key, keys)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateKeyString(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMousebindings(t *testing.T) {
	tests := []struct {
		name     string
		bindings map[string][]string
		wantErr  bool
	}{
		{"Defaults", GetDefaultMousebindings(), false},
		{"Double click", map[string][]string{"fullscreen": {"DoubleLeftClick"}}, false},
		{"Wheel", map[string][]string{"next": {"WheelDown"}, "prev": {"Shift+WheelUp"}}, false},
		{"Unknown button", map[string][]string{"next": {"Button9"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMousebindings(tt.bindings)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateMousebindings() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultBindingsAreValid(t *testing.T) {
	if err := validateKeybindings(GetDefaultKeybindings()); err != nil {
		t.Errorf("default keybindings: %v", err)
	}
	descriptions := GetActionDescriptions()
	for action := range GetDefaultKeybindings() {
		if descriptions[action] == "" {
			t.Errorf("action %s has no description", action)
		}
	}
}

func TestSplitModifiers(t *testing.T) {
	tests := []struct {
		input            string
		name             string
		shift, ctrl, alt bool
	}{
		{"KeyA", "KeyA", false, false, false},
		{"Shift+KeyA", "KeyA", true, false, false},
		{"Ctrl+Alt+Delete", "Delete", false, true, true},
		{"alt+shift+LeftClick", "LeftClick", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, shift, ctrl, alt := splitModifiers(tt.input)
			if name != tt.name || shift != tt.shift || ctrl != tt.ctrl || alt != tt.alt {
				t.Errorf("splitModifiers(%q) = %q %v %v %v, want %q %v %v %v",
					tt.input, name, shift, ctrl, alt, tt.name, tt.shift, tt.ctrl, tt.alt)
			}
		})
	}
}

func TestKeyMapping(t *testing.T) {
	keys := getKeyMapping()
	tests := []struct {
		name string
		want ebiten.Key
	}{
		{"KeyA", ebiten.KeyA},
		{"KeyQ", ebiten.KeyQ},
		{"KeyZ", ebiten.KeyZ},
		{"Key0", ebiten.Key0},
		{"Key7", ebiten.Key7},
		{"Numpad3", ebiten.KeyNumpad3},
		{"NumpadAdd", ebiten.KeyNumpadAdd},
		{"ArrowLeft", ebiten.KeyArrowLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keys[tt.name]
			if !ok || got != tt.want {
				t.Errorf("getKeyMapping()[%q] = %v, %v; want %v", tt.name, got, ok, tt.want)
			}
		})
	}
}

func TestParseKeyCombination(t *testing.T) {
	keys := getKeyMapping()
	got, ok := parseKeyCombination("Ctrl+Shift+KeyB", keys)
	want := KeyCombination{Key: ebiten.KeyB, Shift: true, Ctrl: true}
	if !ok || got != want {
		t.Errorf("parseKeyCombination = %+v, %v; want %+v", got, ok, want)
	}
	if _, ok := parseKeyCombination("Shift+Hyper", keys); ok {
		t.Error("unknown key should not parse")
	}
}

func TestParseMouseCombination(t *testing.T) {
	buttons := getMouseMapping()
	tests := []struct {
		input string
		want  MouseCombination
		ok    bool
	}{
		{"LeftClick", MouseCombination{Button: ebiten.MouseButtonLeft}, true},
		{"Ctrl+RightClick", MouseCombination{Button: ebiten.MouseButtonRight, Ctrl: true}, true},
		{"DoubleLeftClick", MouseCombination{Button: ebiten.MouseButtonLeft, IsDoubleClick: true}, true},
		{"WheelUp", MouseCombination{IsWheel: true, WheelDeltaY: 1}, true},
		{"Shift+WheelLeft", MouseCombination{IsWheel: true, WheelDeltaX: -1, Shift: true}, true},
		{"WheelSideways", MouseCombination{}, false},
		{"DoubleTap", MouseCombination{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseMouseCombination(tt.input, buttons)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseMouseCombination(%q) = %+v, %v; want %+v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestModifiersMatchExactly(t *testing.T) {
	m := modifiers{Alt: true}
	if m.matches(false, false, false) {
		t.Error("Alt held should not match a plain binding")
	}
	if !m.matches(false, false, true) {
		t.Error("Alt held should match an Alt binding")
	}
}

func TestParseSortMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"natural", SortNatural, false},
		{"Simple", SortSimple, false},
		{"entry", SortEntryOrder, false},
		{"entry-order", SortEntryOrder, false},
		{"random", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseSortMethod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSortMethod(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("parseSortMethod(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCollectDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"img10.png", "img2.png", "notes.md", "data.bin", "sub/img1.jpg"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}

	tests := []struct {
		name     string
		include  []string
		expected []Entry
	}{
		{
			name: "All viewable files",
			expected: []Entry{
				{Src: filepath.Join(dir, "img2.png"), Kind: lightbox.KindImage},
				{Src: filepath.Join(dir, "img10.png"), Kind: lightbox.KindImage},
				{Src: filepath.Join(dir, "notes.md"), Kind: lightbox.KindNode},
				{Src: filepath.Join(dir, "sub", "img1.jpg"), Kind: lightbox.KindImage},
			},
		},
		{
			name:    "Include pattern",
			include: []string{"*.png"},
			expected: []Entry{
				{Src: filepath.Join(dir, "img2.png"), Kind: lightbox.KindImage},
				{Src: filepath.Join(dir, "img10.png"), Kind: lightbox.KindImage},
			},
		},
		{
			name:    "Recursive pattern",
			include: []string{"**/*.jpg"},
			expected: []Entry{
				{Src: filepath.Join(dir, "sub", "img1.jpg"), Kind: lightbox.KindImage},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Collector{SortMethod: SortNatural, Include: tt.include}
			got, err := c.Collect(context.Background(), []string{dir})
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Collect() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCollectExplicitFileBypassesInclude(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	writeFile(t, path, "x")

	c := &Collector{Include: []string{"*.png"}}
	got, err := c.Collect(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Src != path {
		t.Errorf("Collect() = %v, want the named file", got)
	}
}

func TestCollectArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "book.zip")

	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, name := range []string{"b.png", "a.jpg", "readme.txt", "thumbs.db"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte("x"))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	c := &Collector{SortMethod: SortNatural}
	got, err := c.Collect(context.Background(), []string{archive, "https://example.com/c.webp"})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	expected := []Entry{
		{Src: archive + ":a.jpg", Kind: lightbox.KindImage},
		{Src: archive + ":b.png", Kind: lightbox.KindImage},
		{Src: archive + ":readme.txt", Kind: lightbox.KindNode},
		{Src: "https://example.com/c.webp", Kind: lightbox.KindImage},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Collect() = %v, want %v", got, expected)
	}
}

func TestCollectMissingPath(t *testing.T) {
	c := &Collector{}
	if _, err := c.Collect(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("missing path should be an error")
	}
}

func TestAnchorsFromEntries(t *testing.T) {
	anchors := anchorsFromEntries([]Entry{
		{Src: "/photos/beach.jpg", Kind: lightbox.KindImage},
		{Src: "book.zip:ch1/intro.md", Kind: lightbox.KindNode},
	})

	expected := []lightbox.Anchor{
		{Href: "/photos/beach.jpg", Title: "beach.jpg", Data: lightbox.Options{"media": "image"}},
		{Href: "book.zip:ch1/intro.md", Title: "intro.md", Data: lightbox.Options{"media": "node"}},
	}
	if !reflect.DeepEqual(anchors, expected) {
		t.Errorf("anchorsFromEntries() = %v, want %v", anchors, expected)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallery.toml")
	writeFile(t, path, `[group]
autoslide = true
delay = 3

[[slide]]
href = "a.jpg"
title = "First"

[[slide]]
href = "https://example.com/b.png"
alt = "Second"
data = { "src-800" = "b-800.png", button = "Open" }

[[slide]]
href = "intro.md"
`)

	m, err := loadManifest(path)
	if err != nil {
		t.Fatalf("loadManifest() error = %v", err)
	}

	expected := []lightbox.Anchor{
		{Href: filepath.Join(dir, "a.jpg"), Title: "First", Data: lightbox.Options{"media": "image"}},
		{Href: "https://example.com/b.png", Alt: "Second", Data: lightbox.Options{
			"src-800": filepath.Join(dir, "b-800.png"),
			"button":  "Open",
			"media":   "image",
		}},
		{Href: filepath.Join(dir, "intro.md"), Data: lightbox.Options{"media": "node"}},
	}
	if got := m.Anchors(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Anchors() = %v, want %v", got, expected)
	}

	group := lightbox.Options{"autoslide": "true", "delay": "3"}
	if got := m.GroupOptions(); !reflect.DeepEqual(got, group) {
		t.Errorf("GroupOptions() = %v, want %v", got, group)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"No slides", "[group]\ntheme = \"white\"\n"},
		{"Slide without href", "[[slide]]\ntitle = \"x\"\n"},
		{"Invalid TOML", "[[slide]\nhref = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "gallery.toml")
			writeFile(t, path, tt.content)
			if _, err := loadManifest(path); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := loadManifest(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing manifest should be an error")
	}
}

// fakeActions records the calls made by the action executor
type fakeActions struct {
	calls []string
	keys  []lightbox.Key
	total int
}

func (f *fakeActions) record(call string)        { f.calls = append(f.calls, call) }
func (f *fakeActions) Exit()                     { f.record("exit") }
func (f *fakeActions) ToggleHelp()               { f.record("help") }
func (f *fakeActions) ToggleInfo()               { f.record("info") }
func (f *fakeActions) Back()                     { f.record("back") }
func (f *fakeActions) GetTotalSlidesCount() int  { return f.total }
func (f *fakeActions) ToggleFullscreen()         { f.record("fullscreen") }
func (f *fakeActions) ToggleTheme()              { f.record("theme") }
func (f *fakeActions) ToggleMenu()               { f.record("menu") }
func (f *fakeActions) Download()                 { f.record("download") }
func (f *fakeActions) RestoreOriginal()          { f.record("normal") }
func (f *fakeActions) ShowOverlayMessage(string) {}

func (f *fakeActions) HandleKey(k lightbox.Key) bool {
	f.keys = append(f.keys, k)
	return true
}

func (f *fakeActions) JumpTo(slide int) {
	f.record("jump:" + string(rune('0'+slide)))
}

func (f *fakeActions) Filter(color lightbox.FilterColor) {
	f.record("filter:" + string(color))
}

func TestActionExecutor(t *testing.T) {
	tests := []struct {
		action        string
		expectedCalls []string
		expectedKeys  []lightbox.Key
		handled       bool
	}{
		{"exit", []string{"exit"}, nil, true},
		{"help", []string{"help"}, nil, true},
		{"first", []string{"jump:1"}, nil, true},
		{"last", []string{"jump:5"}, nil, true},
		{"back", []string{"back"}, nil, true},
		{"green", []string{"filter:" + string(lightbox.FilterGreen)}, nil, true},
		{"normal", []string{"normal"}, nil, true},
		{"autofit", nil, []lightbox.Key{lightbox.KeyBackspace}, true},
		{"close", nil, []lightbox.Key{lightbox.KeyEscape}, true},
		{"next", nil, []lightbox.Key{lightbox.KeyRight}, true},
		{"zoom-out", nil, []lightbox.Key{lightbox.KeyDown}, true},
		{"unknown", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			f := &fakeActions{total: 5}
			handled := globalActionExecutor.ExecuteAction(tt.action, f)
			if handled != tt.handled {
				t.Errorf("ExecuteAction(%s) = %v, want %v", tt.action, handled, tt.handled)
			}
			if !reflect.DeepEqual(f.calls, tt.expectedCalls) {
				t.Errorf("calls = %v, want %v", f.calls, tt.expectedCalls)
			}
			if !reflect.DeepEqual(f.keys, tt.expectedKeys) {
				t.Errorf("keys = %v, want %v", f.keys, tt.expectedKeys)
			}
		})
	}
}

func TestActionExecutorLastOnEmptyGallery(t *testing.T) {
	f := &fakeActions{}
	if !globalActionExecutor.ExecuteAction("last", f) {
		t.Error("last should be handled")
	}
	if len(f.calls) != 0 {
		t.Errorf("last on an empty gallery should not jump, got %v", f.calls)
	}
}

func sceneWithHeader(names ...string) *lightbox.Scene {
	s := &lightbox.Scene{Attached: true, Visible: true, Menu: true, PrevVisible: true, NextVisible: true}
	for _, n := range names {
		s.Header = append(s.Header, lightbox.ControlView{Name: n, Visible: true})
	}
	return s
}

func TestComputeLayout(t *testing.T) {
	scene := sceneWithHeader("close", "autofit", "zoom-in")
	scene.Header = append(scene.Header, lightbox.ControlView{Name: "play", Visible: false})
	scene.Footer = lightbox.Footer{Visible: true, Title: "t", Button: "Open"}

	l := computeLayout(scene, 800, 600)

	var names []string
	for _, c := range l.Controls {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, []string{"close", "autofit", "zoom-in"}) {
		t.Errorf("controls = %v, hidden controls must be skipped", names)
	}
	if x := l.Controls[0].Rect.X; x != 800-headerMargin-controlSize {
		t.Errorf("close at x=%v, want rightmost", x)
	}
	if l.Controls[1].Rect.X >= l.Controls[0].Rect.X {
		t.Error("controls should run right to left")
	}
	if !l.Footer || l.Button.W == 0 {
		t.Error("footer with button expected")
	}

	tests := []struct {
		name     string
		x, y     float64
		expected string
	}{
		{"Close button", 800 - headerMargin - 1, headerMargin + 1, "control:close"},
		{"Second control", 800 - headerMargin - controlSize - controlGap - 1, headerMargin + 1, "control:autofit"},
		{"Prev arrow", 10, 300, "prev"},
		{"Next arrow", 790, 300, "next"},
		{"Footer button", 800 - buttonWidth, 600 - footerPadding - 1, "button"},
		{"Media", 400, 300, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.hit(tt.x, tt.y); got != tt.expected {
				t.Errorf("hit(%v, %v) = %q, want %q", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestComputeLayoutHiddenMenu(t *testing.T) {
	scene := sceneWithHeader("close")
	scene.Menu = false
	scene.Footer = lightbox.Footer{Visible: true, Title: "t"}

	l := computeLayout(scene, 800, 600)
	if len(l.Controls) != 0 || l.Prev.W != 0 || l.Next.W != 0 {
		t.Error("hidden menu should not expose controls or arrows")
	}
	if l.Footer {
		t.Error("unpinned footer hides with the menu")
	}

	scene.Footer.Pinned = true
	if l := computeLayout(scene, 800, 600); !l.Footer {
		t.Error("pinned footer stays visible")
	}

	if l := computeLayout(nil, 800, 600); !reflect.DeepEqual(l, sceneLayout{}) {
		t.Error("nil scene should have an empty layout")
	}
}

type fixedContent struct{ w, h float64 }

func (c fixedContent) Size() geometry.Size { return geometry.Size{W: c.w, H: c.h} }

func TestMediaRect(t *testing.T) {
	viewport := geometry.Size{W: 800, H: 600}
	tests := []struct {
		name     string
		slide    int
		slider   float64
		autofit  bool
		scale    float64
		panX     float64
		expected rect
	}{
		{"Natural size centered", 2, 1, false, 1, 0, rect{300, 250, 200, 100}},
		{"Next pane", 2, 0, false, 1, 0, rect{1100, 250, 200, 100}},
		{"Autofit", 1, 0, true, 1, 0, rect{0, 100, 800, 400}},
		{"Zoomed and panned", 1, 0, false, 2, 10, rect{210, 200, 400, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &lightbox.MediaView{Slide: tt.slide, Content: fixedContent{200, 100}, Autofit: tt.autofit}
			m.Scale.Value = tt.scale
			m.PanX.Value = tt.panX
			if got := mediaRect(m, tt.slider, viewport); got != tt.expected {
				t.Errorf("mediaRect() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestControlLabel(t *testing.T) {
	tests := []struct {
		control  controlRect
		expected string
	}{
		{controlRect{Name: "close"}, "X"},
		{controlRect{Name: "play"}, ">"},
		{controlRect{Name: "play", On: true}, "||"},
		{controlRect{Name: "share"}, "SHA"},
		{controlRect{Name: "ok"}, "OK"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := controlLabel(tt.control); got != tt.expected {
				t.Errorf("controlLabel(%v) = %q, want %q", tt.control, got, tt.expected)
			}
		})
	}
}

func TestFormatInfo(t *testing.T) {
	if got := formatInfo(&lightbox.Scene{}, lightbox.ViewState{}, lightbox.Slide{}, LoaderStats{}); got != "closed" {
		t.Errorf("formatInfo() on a hidden scene = %q", got)
	}

	scene := &lightbox.Scene{Visible: true, Count: 12}
	info := formatInfo(scene,
		lightbox.ViewState{CurrentSlide: 3, Scale: 1.5, Playing: true},
		lightbox.Slide{Kind: lightbox.KindImage, Title: "Beach"},
		LoaderStats{Loaded: 4, Warmed: 2},
	)
	for _, want := range []string{"Beach", "3 / 12  image", "zoom 150%", "playing", "loaded 4, warmed 2, failed 0"} {
		if !strings.Contains(info, want) {
			t.Errorf("info %q is missing %q", info, want)
		}
	}
}

func TestThemePalette(t *testing.T) {
	if themePalette("white") != whitePalette {
		t.Error("white theme should use the light palette")
	}
	for _, theme := range []string{"", "dark", "custom"} {
		if themePalette(theme) != darkPalette {
			t.Errorf("theme %q should use the dark palette", theme)
		}
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if got := uniquePath(path); got != path {
		t.Errorf("uniquePath() = %s, want %s", got, path)
	}

	writeFile(t, path, "x")
	writeFile(t, filepath.Join(dir, "photo (1).jpg"), "x")
	if got, want := uniquePath(path), filepath.Join(dir, "photo (2).jpg"); got != want {
		t.Errorf("uniquePath() = %s, want %s", got, want)
	}
}

func TestFilterOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		src      string
		color    filter.Color
		expected string
	}{
		{"/photos/beach.png", filter.Green, "beach-green.jpg"},
		{"book.zip:ch1/p01.jpg", filter.Red, "p01-red.jpg"},
		{"https://example.com/a/b.webp?w=800", filter.Green, "b-green.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := filterOutputPath(dir, tt.src, tt.color); got != filepath.Join(dir, tt.expected) {
				t.Errorf("filterOutputPath(%s) = %s, want %s", tt.src, got, tt.expected)
			}
		})
	}
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"a.jpg", filepath.Join("/gallery", "a.jpg")},
		{"book.zip:p1.png", filepath.Join("/gallery", "book.zip:p1.png")},
		{"/abs/a.jpg", "/abs/a.jpg"},
		{"https://example.com/a.jpg", "https://example.com/a.jpg"},
		{"gs://bucket/a.jpg", "gs://bucket/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := resolveSource("/gallery", tt.src); got != tt.expected {
				t.Errorf("resolveSource(%s) = %s, want %s", tt.src, got, tt.expected)
			}
		})
	}
}

func TestFilterOne(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")

	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	writeFile(t, src, buf.String())

	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatal(err)
	}
	saved := filterOut
	filterOut = out
	defer func() { filterOut = saved }()

	worker := filter.NewWorker(1, true)
	defer worker.Stop()
	fetcher := media.NewFetcher(media.Options{})

	if err := filterOne(context.Background(), fetcher, worker, src, filter.Green); err != nil {
		t.Fatalf("filterOne() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "photo-green.jpg"))
	if err != nil {
		t.Fatalf("Expected the filtered file: %v", err)
	}
	got, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Output is not a JPEG: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("Output size = %v, want 4x2", b)
	}

	if err := filterOne(context.Background(), fetcher, worker, filepath.Join(dir, "missing.png"), filter.Green); err == nil {
		t.Error("Expected an error for a missing source")
	}
}
