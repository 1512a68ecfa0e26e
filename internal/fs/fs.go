package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
)

// Entry is one filesystem item yielded by Walk.
type Entry struct {
	Path      string    // absolute path
	IsDir     bool      // true for directories (and followed directory links)
	IsSymlink bool      // true if the entry itself is a symbolic link
	Size      int64     // file size in bytes, 0 for directories
	ModTime   time.Time // last modification time
}

// WalkOptions controls which entries Walk yields.
type WalkOptions struct {
	// RespectIgnore applies .gitignore/.ignore files and the exclude list.
	RespectIgnore bool
	// ShowHidden includes dotfiles and dot-directories.
	ShowHidden bool
	// MaxDepth limits entry depth below root (0 = unlimited).
	MaxDepth int
	// MaxFileSize skips files larger than this many bytes (0 = unlimited).
	MaxFileSize int64
	// FollowLinks descends into symlinked directories.
	FollowLinks bool
	// Exclude holds additional glob patterns, applied when RespectIgnore is set.
	Exclude *ExcludeList
}

// IgnoreFiles are the per-directory rule files honored by Walk.
var IgnoreFiles = []string{".gitignore", ".ignore"}

type ignoreRule struct {
	base string
	gi   *ignore.GitIgnore
}

type walker struct {
	root    string
	opts    WalkOptions
	rules   []ignoreRule
	visited map[string]bool
	entries []Entry
}

// Walk returns every entry under root that survives the filters, in
// depth-first order with siblings sorted by name. Unreadable subdirectories
// are skipped; an unreadable root is an error.
func Walk(root string, opts WalkOptions) ([]Entry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, abs)
	}

	if opts.Exclude == nil {
		opts.Exclude = BuildExcludeList(ExcludeOptions{})
	}

	w := &walker{
		root:    abs,
		opts:    opts,
		visited: map[string]bool{},
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		w.visited[real] = true
	}

	if err := w.walkDir(abs, 0); err != nil {
		return nil, err
	}
	return w.entries, nil
}

func (w *walker) walkDir(dir string, depth int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == w.root {
			return err
		}
		return nil
	}

	pushed := 0
	if w.opts.RespectIgnore {
		pushed = w.pushIgnoreRules(dir)
	}
	defer func() { w.rules = w.rules[:len(w.rules)-pushed] }()

	for _, d := range entries {
		name := d.Name()
		path := filepath.Join(dir, name)

		if !w.opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		isLink := d.Type()&os.ModeSymlink != 0
		info, err := d.Info()
		if err != nil {
			continue
		}
		isDir := d.IsDir()
		if isLink {
			target, err := os.Stat(path)
			if err == nil && target.IsDir() && w.opts.FollowLinks {
				isDir = true
				info = target
			}
		}

		if w.opts.RespectIgnore && w.isIgnored(path, isDir) {
			continue
		}

		if w.opts.MaxDepth > 0 && depth+1 > w.opts.MaxDepth {
			continue
		}

		if !isDir && w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
			continue
		}

		entry := Entry{
			Path:      path,
			IsDir:     isDir,
			IsSymlink: isLink,
			ModTime:   info.ModTime(),
		}
		if !isDir {
			entry.Size = info.Size()
		}
		w.entries = append(w.entries, entry)

		if !isDir {
			continue
		}

		if isLink {
			real, err := filepath.EvalSymlinks(path)
			if err != nil || w.visited[real] {
				continue
			}
			w.visited[real] = true
		}

		if err := w.walkDir(path, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// pushIgnoreRules compiles the ignore files found in dir and returns how
// many rules were added.
func (w *walker) pushIgnoreRules(dir string) int {
	n := 0
	for _, name := range IgnoreFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		gi, err := ignore.CompileIgnoreFile(p)
		if err != nil {
			continue
		}
		w.rules = append(w.rules, ignoreRule{base: dir, gi: gi})
		n++
	}
	return n
}

func (w *walker) isIgnored(path string, isDir bool) bool {
	if rel, err := filepath.Rel(w.root, path); err == nil {
		if w.opts.Exclude.Matches(filepath.ToSlash(rel), isDir) {
			return true
		}
	}

	for _, rule := range w.rules {
		rel, err := filepath.Rel(rule.base, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rule.gi.MatchesPath(rel) {
			return true
		}
		if isDir && rule.gi.MatchesPath(rel+"/") {
			return true
		}
	}
	return false
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ErrNotDir is returned when a session is asked to root itself at a file.
var ErrNotDir = errors.New("not a directory")

// ResolveRoot returns the absolute, symlink-free form of root and verifies it
// is a directory. Entry paths must share this form with git's toplevel for
// marker lookups.
func ResolveRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if !IsDir(abs) {
		return "", fmt.Errorf("%w: %s", ErrNotDir, abs)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return real, nil
}
