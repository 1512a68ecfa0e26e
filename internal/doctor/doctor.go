// Package doctor checks the environment twig depends on.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/git"
	"github.com/tormodhaugland/twig/internal/logger"
	"github.com/tormodhaugland/twig/internal/lookup"
)

type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

// Failed reports whether any check failed. Warnings do not count.
func (r Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func (r *Report) add(name string, status Status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

// Run loads the config at configPath (or the default search path) and
// checks everything a pass or a session needs.
func Run(configPath string) Report {
	var r Report

	cfg, err := config.Load(configPath)
	if err != nil {
		r.add("config", StatusFail, err.Error())
		cfg = config.DefaultConfig()
	} else {
		r.add("config", StatusOK, "loaded")
	}

	if _, err := config.LoadTheme(cfg.ThemeFile); err != nil {
		r.add("theme", StatusFail, err.Error())
	} else if cfg.ThemeFile == "" {
		r.add("theme", StatusOK, "default theme")
	} else {
		r.add("theme", StatusOK, cfg.ThemeFile)
	}

	excludes := fs.BuildExcludeList(fs.ExcludeOptions{Additional: cfg.Exclude})
	if err := excludes.Validate(); err != nil {
		r.add("exclude", StatusFail, err.Error())
	} else {
		r.add("exclude", StatusOK, fmt.Sprintf("%d patterns", len(excludes.Patterns)))
	}

	if git.Available() {
		r.add("git", StatusOK, "found on PATH")
	} else {
		r.add("git", StatusWarn, "git not found; status markers and branch trees are unavailable")
	}

	r.checkCache(cfg)
	return r
}

func (r *Report) checkCache(cfg *config.Config) {
	dir := cfg.CacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.add("cache", StatusFail, err.Error())
		return
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		r.add("cache", StatusFail, fmt.Sprintf("%s is not writable: %v", dir, err))
		return
	}
	probe.Close()
	os.Remove(probe.Name())
	r.add("cache", StatusOK, dir)

	store, err := lookup.Open(cfg.LookupPath())
	if err != nil {
		r.add("lookup", StatusFail, err.Error())
	} else {
		root, rerr := store.Root()
		store.Close()
		switch {
		case rerr != nil:
			r.add("lookup", StatusFail, rerr.Error())
		case root == "":
			r.add("lookup", StatusOK, "empty")
		default:
			r.add("lookup", StatusOK, "last root "+root)
		}
	}

	log, err := logger.New(cfg.LogPath(), logger.LevelInfo)
	if err != nil {
		r.add("log", StatusFail, err.Error())
		return
	}
	log.Close()
	r.add("log", StatusOK, filepath.Clean(cfg.LogPath()))
}
