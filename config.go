package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"lightbox/internal/lightbox"
)

// Window size constants
const (
	defaultWidth  = 1024
	defaultHeight = 768
	minWidth      = 400
	minHeight     = 300
)

// Sort method constants
const (
	SortNatural    = 0 // Natural sort order (e.g., file1, file2, file10)
	SortSimple     = 1 // Simple string sort (lexicographical)
	SortEntryOrder = 2 // Maintain original order (no sort)
)

const envPrefix = "LIGHTBOX_"

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth    int     `yaml:"window_width" koanf:"window_width"`
	WindowHeight   int     `yaml:"window_height" koanf:"window_height"`
	Fullscreen     bool    `yaml:"fullscreen" koanf:"fullscreen"`
	SortMethod     int     `yaml:"sort_method" koanf:"sort_method"`
	CacheSize      int     `yaml:"cache_size" koanf:"cache_size"`
	PreloadEnabled bool    `yaml:"preload_enabled" koanf:"preload_enabled"`
	PreloadCount   int     `yaml:"preload_count" koanf:"preload_count"`
	LoadWorkers    int     `yaml:"load_workers" koanf:"load_workers"`
	HelpFontSize   float64 `yaml:"help_font_size" koanf:"help_font_size"`

	// Gallery options applied to every slide, the same keys a manifest
	// [group] table takes
	Theme             string         `yaml:"theme" koanf:"theme"`
	TitleFromFilename bool           `yaml:"title_from_filename" koanf:"title_from_filename"`
	Group             map[string]any `yaml:"group" koanf:"group"`
	Include           []string       `yaml:"include" koanf:"include"`

	DownloadDir      string  `yaml:"download_dir" koanf:"download_dir"`
	DevicePixelRatio float64 `yaml:"device_pixel_ratio" koanf:"device_pixel_ratio"` // 0 asks the monitor
	Downlink         float64 `yaml:"downlink" koanf:"downlink"`                     // Mbit/s, 0 if unknown

	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds" koanf:"fetch_timeout_seconds"`
	CacheTTLSeconds     int    `yaml:"cache_ttl_seconds" koanf:"cache_ttl_seconds"`
	RemoteAddr          string `yaml:"remote_addr" koanf:"remote_addr"`
	RemoteAllowAll      bool   `yaml:"remote_allow_all" koanf:"remote_allow_all"`

	Keybindings   map[string][]string `yaml:"keybindings" koanf:"keybindings"`
	Mousebindings map[string][]string `yaml:"mousebindings" koanf:"mousebindings"`
	Mouse         MouseSettings       `yaml:"mouse" koanf:"mouse"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() Config {
	return Config{
		WindowWidth:         defaultWidth,
		WindowHeight:        defaultHeight,
		SortMethod:          SortNatural,
		CacheSize:           16,
		PreloadEnabled:      true,
		PreloadCount:        4,
		LoadWorkers:         2,
		HelpFontSize:        24.0,
		TitleFromFilename:   true,
		Group:               map[string]any{},
		FetchTimeoutSeconds: 30,
		CacheTTLSeconds:     300,
		Keybindings:         GetDefaultKeybindings(),
		Mousebindings:       GetDefaultMousebindings(),
		Mouse:               GetDefaultMouseSettings(),
	}
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".lightbox.yml"
	}
	return filepath.Join(homeDir, ".lightbox.yml")
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	result := ConfigLoadResult{
		Config:   DefaultConfig(),
		Warnings: []string{},
		Status:   "OK",
	}

	k := koanf.New(".")

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			log.Printf("Warning: Invalid config file %s, using defaults: %v", configPath, err)
			result.HasError = true
			result.Status = "Error"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
			return result
		}
	} else {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
	}

	// LIGHTBOX_CACHE_SIZE -> cache_size
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Environment overrides ignored: %v", err))
	}

	config := DefaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		log.Printf("Warning: Invalid config values in %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config values: %v", err))
		return result
	}

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	// Validate help font size (minimum 12px for readability)
	if config.HelpFontSize <= 12.0 {
		config.HelpFontSize = 24.0
	}

	if config.SortMethod < SortNatural || config.SortMethod > SortEntryOrder {
		config.SortMethod = SortNatural
	}

	// Validate cache size (minimum 1, maximum 64)
	if config.CacheSize < 1 {
		config.CacheSize = 16
	} else if config.CacheSize > 64 {
		config.CacheSize = 64
	}

	// Validate preload count (minimum 1, maximum 16)
	if config.PreloadCount < 1 {
		config.PreloadCount = 4
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	if config.LoadWorkers < 1 {
		config.LoadWorkers = 2
	} else if config.LoadWorkers > 8 {
		config.LoadWorkers = 8
	}

	if config.DevicePixelRatio < 0 {
		config.DevicePixelRatio = 0
	}
	if config.Downlink < 0 {
		config.Downlink = 0
	}
	if config.FetchTimeoutSeconds <= 0 {
		config.FetchTimeoutSeconds = 30
	}
	if config.CacheTTLSeconds <= 0 {
		config.CacheTTLSeconds = 300
	}
	if config.Group == nil {
		config.Group = map[string]any{}
	}

	if config.Mouse.WheelSensitivity <= 0 {
		config.Mouse.WheelSensitivity = 1.0
	}
	if config.Mouse.DoubleClickTime < 100 || config.Mouse.DoubleClickTime > 1000 {
		config.Mouse.DoubleClickTime = 300
	}

	if warning := fillBindings(&config.Keybindings, GetDefaultKeybindings(), validateKeybindings); warning != "" {
		result.Status = "Warning"
		result.Warnings = append(result.Warnings, "Keybinding errors: "+warning)
	}
	if warning := fillBindings(&config.Mousebindings, GetDefaultMousebindings(), validateMousebindings); warning != "" {
		result.Status = "Warning"
		result.Warnings = append(result.Warnings, "Mouse binding errors: "+warning)
	}

	result.Config = config
	return result
}

// fillBindings adds defaults for missing actions and falls back to the
// defaults entirely when validation fails. It returns the validation error
// text, or "".
func fillBindings(bindings *map[string][]string, defaults map[string][]string, validate func(map[string][]string) error) string {
	if *bindings == nil {
		*bindings = defaults
		return ""
	}
	for action, keys := range defaults {
		if _, exists := (*bindings)[action]; !exists {
			(*bindings)[action] = keys
		}
	}
	if err := validate(*bindings); err != nil {
		log.Printf("Warning: Invalid bindings detected, using defaults: %v", err)
		*bindings = defaults
		return err.Error()
	}
	return ""
}

// validateKeybindings validates the keybindings configuration
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[string]string)
	keyMapping := getKeyMapping()

	for _, action := range sortedActions(keybindings) {
		for _, keyStr := range keybindings[action] {
			if err := validateKeyString(keyStr, keyMapping); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}
			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString[V any](keyStr string, valid map[string]V) error {
	parts := strings.Split(keyStr, "+")

	// Last part should be the actual key
	keyName := parts[len(parts)-1]
	if keyName == "" {
		return fmt.Errorf("empty key string")
	}
	if _, ok := valid[keyName]; !ok {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	for _, modifier := range parts[:len(parts)-1] {
		switch strings.ToLower(modifier) {
		case "shift", "ctrl", "alt":
		default:
			return fmt.Errorf("unknown modifier: %s", modifier)
		}
	}

	return nil
}

// validateMousebindings checks mouse strings the same way keys are checked
func validateMousebindings(mousebindings map[string][]string) error {
	valid := make(map[string]bool)
	for name := range getMouseMapping() {
		valid[name] = true
		valid["Double"+name] = true
	}
	for _, wheel := range []string{"WheelUp", "WheelDown", "WheelLeft", "WheelRight"} {
		valid[wheel] = true
	}

	for _, action := range sortedActions(mousebindings) {
		for _, mouseStr := range mousebindings[action] {
			if err := validateKeyString(mouseStr, valid); err != nil {
				return fmt.Errorf("invalid mouse action '%s' for action '%s': %v", mouseStr, action, err)
			}
		}
	}
	return nil
}

func sortedActions(bindings map[string][]string) []string {
	actions := make([]string, 0, len(bindings))
	for action := range bindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// groupOptions returns the configured gallery options as lightbox options.
// Scalar YAML values are stringified; "theme" falls back to Config.Theme.
func (c Config) groupOptions() lightbox.Options {
	opts := stringifyOptions(c.Group)
	if _, ok := opts["theme"]; !ok && c.Theme != "" {
		opts["theme"] = c.Theme
	}
	return opts
}

func stringifyOptions(values map[string]any) lightbox.Options {
	opts := make(lightbox.Options, len(values))
	for k, v := range values {
		if v == nil {
			continue
		}
		opts[k] = fmt.Sprint(v)
	}
	return opts
}

// getSortMethodName returns the human-readable name of a sort method
func getSortMethodName(sortMethod int) string {
	return GetSortStrategy(sortMethod).Name()
}

func marshalConfig(config Config) ([]byte, error) {
	return yamlv3.Marshal(config)
}

func saveConfigToPath(config Config, configPath string) {
	// Don't save if size is too small
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		log.Printf("Warning: Not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
		return
	}

	data, err := marshalConfig(config)
	if err != nil {
		log.Printf("Error: Failed to marshal config: %v", err)
		return
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		log.Printf("Error: Failed to save config to %s: %v", configPath, err)
	}
}
