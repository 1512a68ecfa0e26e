// Package git shells out to the git binary for the status markers, branch
// names and staging that the tree viewer consumes.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Marker is a short status tag attached to a tree leaf.
type Marker string

const (
	Modified   Marker = "M"
	Added      Marker = "A"
	Deleted    Marker = "D"
	Renamed    Marker = "R"
	Copied     Marker = "C"
	Conflicted Marker = "U"
	Untracked  Marker = "?"
	Current    Marker = "*"
)

var ErrNotRepo = errors.New("not a git repository")

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

func IsRepo(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// Toplevel returns the working tree root containing path.
func Toplevel(path string) (string, error) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotRepo, path)
	}
	return filepath.Clean(strings.TrimSpace(string(out))), nil
}

// StatusMarkers maps the absolute path of every non-clean file under root to
// its marker. A root outside any repository yields ErrNotRepo.
func StatusMarkers(root string) (map[string]Marker, error) {
	top, err := Toplevel(root)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("git", "-C", top, "status", "--porcelain", "-z", "--untracked-files=all")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git status: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return ParseStatus(top, out), nil
}

// ParseStatus decodes `git status --porcelain -z` output. Paths are joined
// onto top, the repository root the output is relative to.
func ParseStatus(top string, out []byte) map[string]Marker {
	markers := make(map[string]Marker)
	fields := strings.Split(string(out), "\x00")

	for i := 0; i < len(fields); i++ {
		rec := fields[i]
		if len(rec) < 4 {
			continue
		}
		code := rec[:2]
		path := rec[3:]

		// Renames and copies carry the source path as the next field.
		if code[0] == 'R' || code[0] == 'C' {
			i++
		}

		m := markerFor(code)
		if m == "" {
			continue
		}
		markers[filepath.Join(top, filepath.FromSlash(path))] = m
	}
	return markers
}

func markerFor(code string) Marker {
	switch code {
	case "??":
		return Untracked
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return Conflicted
	}

	x, y := code[0], code[1]
	c := x
	if c == ' ' || c == '!' {
		c = y
	}
	switch c {
	case 'M', 'T':
		return Modified
	case 'A':
		return Added
	case 'D':
		return Deleted
	case 'R':
		return Renamed
	case 'C':
		return Copied
	}
	return ""
}

// Branch is one ref name as shown by the branch tree.
type Branch struct {
	Name    string
	Current bool
}

// Branches lists local branch names of the repository containing path,
// sorted by name. With remote set, remote-tracking refs are included as
// "remotes/<remote>/<branch>".
func Branches(path string, remote bool) ([]Branch, error) {
	if !IsRepo(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepo, path)
	}

	refs := []string{"refs/heads"}
	if remote {
		refs = append(refs, "refs/remotes")
	}
	args := append([]string{"-C", path, "for-each-ref", "--format=%(HEAD)%00%(refname)"}, refs...)
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("git for-each-ref: %w", err)
	}

	return parseBranches(string(out)), nil
}

func parseBranches(out string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(out, "\n") {
		head, ref, ok := strings.Cut(line, "\x00")
		if !ok {
			continue
		}
		var name string
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			name = strings.TrimPrefix(ref, "refs/heads/")
		case strings.HasPrefix(ref, "refs/remotes/"):
			name = "remotes/" + strings.TrimPrefix(ref, "refs/remotes/")
			if strings.HasSuffix(name, "/HEAD") {
				continue
			}
		default:
			continue
		}
		branches = append(branches, Branch{Name: name, Current: head == "*"})
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches
}

// Stage runs `git add` for paths inside the repository at repo.
func Stage(repo string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"-C", repo, "add", "--"}, paths...)
	cmd := exec.Command("git", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
