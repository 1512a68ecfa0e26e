package config

import (
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// Filters are the walk/match/render parameters of one pass. The session
// mutates a copy; the configured defaults are what a reset falls back to.
type Filters struct {
	Pattern     string `json:"pattern,omitempty"`
	ShowHidden  bool   `json:"show_hidden"`
	NoIgnore    bool   `json:"no_ignore"`
	MaxDepth    int    `json:"max_depth,omitempty"`
	MaxFileSize int64  `json:"max_filesize,omitempty"`
	FollowLinks bool   `json:"follow_links"`
	Icons       bool   `json:"icons"`
	Metadata    bool   `json:"metadata"`
	GitMarkers  bool   `json:"git_markers"`
	Labels      bool   `json:"labels"`
	DirsOnly    bool   `json:"dirs_only"`
	Plain       bool   `json:"plain"`
}

// DefaultFilters mirrors a plain `twig` invocation.
func DefaultFilters() Filters {
	return Filters{
		GitMarkers: true,
		Labels:     true,
	}
}

type Config struct {
	Schema    int      `json:"schema"`
	Editor    string   `json:"editor,omitempty"`
	CacheRoot string   `json:"cache_dir,omitempty"`
	ThemeFile string   `json:"theme_file,omitempty"`
	Exclude   []string `json:"exclude,omitempty"`
	Defaults  Filters  `json:"defaults"`
}

const CurrentConfigSchema = 1

func DefaultConfig() *Config {
	return &Config{
		Schema:   CurrentConfigSchema,
		Editor:   "",
		Exclude:  []string{},
		Defaults: DefaultFilters(),
	}
}

func Load(configPath string) (*Config, error) {
	paths := getConfigPaths(configPath)

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}

		cfg.expandPaths()
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "twig", "config.json"))

	paths = append(paths, filepath.Join(home, ".twig.json"))

	return paths
}

func (c *Config) expandPaths() {
	c.CacheRoot = expandHome(c.CacheRoot)
	c.ThemeFile = expandHome(c.ThemeFile)
}

func expandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
}

// CacheDir holds the lookup store and the log file.
func (c *Config) CacheDir() string {
	if c.CacheRoot != "" {
		return c.CacheRoot
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "twig")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "twig")
}

func (c *Config) LookupPath() string {
	return filepath.Join(c.CacheDir(), "lookup.db")
}

func (c *Config) LogPath() string {
	return filepath.Join(c.CacheDir(), "twig.log")
}

// ExportPath is where an exported tree of root lands when no file is given.
func (c *Config) ExportPath(root string) string {
	name := filepath.Base(root)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "root"
	}
	return filepath.Join(c.CacheDir(), "exports", name+".tree.txt")
}

// EditorCommand returns the configured editor, then $VISUAL, then $EDITOR.
func (c *Config) EditorCommand() string {
	if c.Editor != "" {
		return c.Editor
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	return os.Getenv("EDITOR")
}
