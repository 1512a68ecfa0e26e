// Package pass runs one render pass: walk, status markers, match, assemble,
// label and store.
package pass

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tormodhaugland/twig/internal/config"
	"github.com/tormodhaugland/twig/internal/fs"
	"github.com/tormodhaugland/twig/internal/git"
	"github.com/tormodhaugland/twig/internal/logger"
	"github.com/tormodhaugland/twig/internal/match"
	"github.com/tormodhaugland/twig/internal/tree"
)

var (
	// ErrNothingFound means the directory has nothing to show. It is a notice,
	// not a failure.
	ErrNothingFound = errors.New("nothing found")
	// ErrNoMatches means the active pattern matched nothing.
	ErrNoMatches = errors.New("pattern matched nothing")
)

// Store receives the token maps of every successful pass.
type Store interface {
	Replace(root string, labels tree.Labels) error
}

type Options struct {
	Root    string
	Filters config.Filters
	Exclude *fs.ExcludeList
	// Branches builds the tree from branch names of the repository at Root
	// instead of walking the filesystem.
	Branches bool
	Remote   bool
}

type Result struct {
	Root     string
	Tree     *tree.Tree
	Entries  int
	Matched  int
	Duration time.Duration
}

// Run performs one pass. On ErrNothingFound and ErrNoMatches the result is
// still returned, holding an empty tree; the store is left untouched.
func Run(ctx context.Context, opts Options, store Store) (*Result, error) {
	log := logger.FromContext(ctx).WithValues(logger.RootKey, opts.Root)
	start := time.Now()

	var (
		root    string
		entries []fs.Entry
		markers map[string]git.Marker
		err     error
	)
	if opts.Branches {
		entries, markers, err = branchEntries(opts.Root, opts.Remote)
	} else {
		root, err = fs.ResolveRoot(opts.Root)
		if err == nil {
			entries, markers, err = walkEntries(root, opts)
		}
	}
	if err != nil {
		log.Error(err, "pass failed")
		return nil, err
	}

	m, err := match.New(opts.Filters.Pattern, markers, opts.Filters.DirsOnly && !opts.Branches)
	if err != nil {
		return nil, err
	}
	matched := m.All(entries)

	t, err := tree.Build(root, matched)
	if err != nil {
		log.Error(err, "tree assembly failed")
		return nil, err
	}

	res := &Result{
		Root:     root,
		Tree:     t,
		Entries:  len(entries),
		Matched:  len(matched),
		Duration: time.Since(start),
	}

	switch {
	case len(t.Nodes) == 0 && m.Active() && len(entries) > 0:
		return res, ErrNoMatches
	case len(t.Nodes) == 0:
		return res, ErrNothingFound
	}

	if store != nil {
		if err := store.Replace(root, t.Labels); err != nil {
			log.Error(err, "storing labels failed")
			return nil, fmt.Errorf("storing labels: %w", err)
		}
	}

	log.V(1).Info("pass complete",
		"entries", res.Entries,
		"matched", res.Matched,
		"nodes", len(t.Nodes),
		"duration", res.Duration.String(),
	)
	return res, nil
}

func walkEntries(root string, opts Options) ([]fs.Entry, map[string]git.Marker, error) {
	f := opts.Filters
	entries, err := fs.Walk(root, fs.WalkOptions{
		RespectIgnore: !f.NoIgnore,
		ShowHidden:    f.ShowHidden,
		MaxDepth:      f.MaxDepth,
		MaxFileSize:   f.MaxFileSize,
		FollowLinks:   f.FollowLinks,
		Exclude:       opts.Exclude,
	})
	if err != nil {
		return nil, nil, err
	}

	if !f.GitMarkers || !git.Available() {
		return entries, nil, nil
	}
	markers, err := git.StatusMarkers(root)
	if errors.Is(err, git.ErrNotRepo) {
		return entries, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return entries, markers, nil
}

func branchEntries(repo string, remote bool) ([]fs.Entry, map[string]git.Marker, error) {
	branches, err := git.Branches(repo, remote)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]fs.Entry, 0, len(branches))
	markers := make(map[string]git.Marker)
	for _, b := range branches {
		entries = append(entries, fs.Entry{Path: b.Name})
		if b.Current {
			markers[b.Name] = git.Current
		}
	}
	return entries, markers, nil
}
